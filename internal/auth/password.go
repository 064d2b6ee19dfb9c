package auth

import (
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Accepted password lengths. bcrypt reads at most 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// DefaultEmailDomains is the sign-up allow list used when the configured
// list is "default".
var DefaultEmailDomains = []string{"gmail.com", "outlook.com", "yahoo.com", "hotmail.com"}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// NormalizeEmail lowercases and trims an address and checks it parses as a
// bare address. allowed, when not empty, restricts the domain.
func NormalizeEmail(email string, allowed []string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	if len(allowed) == 0 {
		return email, nil
	}
	domain := email[strings.LastIndexByte(email, '@')+1:]
	for _, d := range allowed {
		if strings.EqualFold(domain, strings.TrimSpace(d)) {
			return email, nil
		}
	}
	return "", ErrEmailDomain
}
