package auth

import (
	"errors"
	"strings"
)

var (
	ErrUserExists         = errors.New("user already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrWeakPassword       = errors.New("weak password: password should be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password too long: password should be at most 72 bytes")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailDomain        = errors.New("email domain not allowed")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrRateLimited        = errors.New("too many requests")
	ErrSessionExpired     = errors.New("session expired")
	ErrNoSession          = errors.New("no session")
)

const unexpectedMessage = "An unexpected error occurred. Please try again."

// messageRule maps any of its substrings to a user-facing phrase. Rules are
// tried in order and the first hit wins.
type messageRule struct {
	match   func(msg string) bool
	message string
}

func containsAny(subs ...string) func(string) bool {
	return func(msg string) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

var messageRules = []messageRule{
	{containsAny("user already registered"), "An account with this email already exists. Please try logging in instead."},
	{containsAny("invalid login credentials", "email not confirmed", "invalid credentials"), "Invalid email or password, please check your credentials and try again."},
	{containsAny("email not found", "user not found"), "No account found with this email, please check your email or sign up."},
	// Checked ahead of the generic password rule, which would swallow it.
	{containsAny("weak password", "password should be at least"), "Password is too weak, please use at least 6 characters."},
	{func(msg string) bool { return strings.Contains(msg, "email") && strings.Contains(msg, "invalid") }, "Please enter a valid email address."},
	{containsAny("passwords do not match"), "Passwords do not match."},
	{containsAny("password too long"), "Password is too long, please use at most 72 characters."},
	{containsAny("email domain not allowed"), "Please use a valid email address (gmail, outlook, yahoo, etc)."},
	{containsAny("password"), "Incorrect password, please try again."},
	{containsAny("rate limit", "too many requests"), "Too many attempts, please wait a moment before trying again."},
	{containsAny("network", "connection"), "Network error, please check your connection and try again."},
}

// Message turns an auth error into the phrase shown to the user. Matching is
// case-insensitive on the error text; unknown errors pass through verbatim.
func Message(err error) string {
	if err == nil || err.Error() == "" {
		return unexpectedMessage
	}
	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		if rule.match(msg) {
			return rule.message
		}
	}
	return err.Error()
}
