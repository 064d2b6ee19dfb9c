// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// record bodies in JSON or form encoding, period parameters, and the list
// view parameters.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/views"
)

// ErrBodyTooLarge is returned when a request body exceeds maxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// ParsePeriodParams reads month and year from the query. Both missing means
// the current period; one missing is an error.
func ParsePeriodParams(query url.Values) (core.Period, error) {
	month := strings.TrimSpace(query.Get("month"))
	year := strings.TrimSpace(query.Get("year"))
	if month == "" && year == "" {
		return core.CurrentPeriod(), nil
	}
	return core.ParsePeriod(month, year)
}

// ParseYearParam reads the year query parameter, defaulting to the current
// year.
func ParseYearParam(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return core.CurrentPeriod().Year, nil
	}
	if err := core.ValidateYear(v); err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// ListParams are the sort and search settings of a list request.
type ListParams struct {
	Sort   views.SortState
	Search views.Search
}

// ParseListParams reads sort, dir, column and q. Without column the search
// runs on the sort key.
func ParseListParams(query url.Values) ListParams {
	p := ListParams{}
	if key := strings.TrimSpace(query.Get("sort")); key != "" {
		p.Sort = views.SortState{Key: key, Direction: views.ParseDirection(query.Get("dir"))}
	}
	p.Search = views.Search{
		Column: strings.TrimSpace(query.Get("column")),
		Term:   strings.TrimSpace(query.Get("q")),
	}
	if p.Search.Column == "" {
		p.Search.Column = p.Sort.Key
	}
	return p
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = ErrBodyTooLarge
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(p.body))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a trimmed, sanitised value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	return strings.TrimSpace(sanitizeInput(p.GetRaw(key)))
}

// GetRaw returns a value exactly as sent, for secrets such as passwords.
func (p *RequestBodyParser) GetRaw(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// Values returns every top-level field as sanitised text, the shape the
// record schemas validate.
func (p *RequestBodyParser) Values() map[string]string {
	out := make(map[string]string)
	for key, val := range p.jsonData {
		out[key] = strings.TrimSpace(sanitizeInput(stringValue(val)))
	}
	for key := range p.formData {
		out[key] = p.Get(key)
	}
	return out
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to text. Numbers keep their
// literal form so amounts are never rounded through float64.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
