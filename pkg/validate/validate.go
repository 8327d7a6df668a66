// Package validate decodes JSON request bodies field by field and collects
// every failed rule into a response.ValidationError.
//
// Issue codes follow a small fixed vocabulary: invalid_type for missing or
// non-string fields, too_small and too_big for length bounds, invalid_format
// for emails, URLs and patterns, and custom for cross-field rules.
package validate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
)

const (
	CodeInvalidType   = "invalid_type"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeInvalidFormat = "invalid_format"
	CodeCustom        = "custom"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 64 << 10

// ErrMalformedJSON is returned for bodies that are not a JSON object.
var ErrMalformedJSON = apperrors.InvalidInput("Malformed JSON in request body")

// Body is a decoded JSON object whose values are parsed on demand.
type Body map[string]json.RawMessage

// DecodeBody reads a JSON object from r.
func DecodeBody(w http.ResponseWriter, r *http.Request) (Body, error) {
	var body Body
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, ErrMalformedJSON
	}
	return body, nil
}

// Checker accumulates issues for one body.
type Checker struct {
	body Body
	errs response.ValidationError
}

func New(body Body) *Checker {
	return &Checker{body: body}
}

// Required returns the field as a string with surrounding whitespace kept.
// Missing, null and non-string values are reported and yield ok == false.
func (c *Checker) Required(field string) (string, bool) {
	raw, present := c.body[field]
	if !present || string(raw) == "null" {
		c.Add(field, CodeInvalidType, fmt.Sprintf("Field '%s' is required", field))
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.Add(field, CodeInvalidType, fmt.Sprintf("Field '%s' must be a string", field))
		return "", false
	}
	return s, true
}

// Optional returns nil when the field is absent. A present value that is
// not a string is reported.
func (c *Checker) Optional(field string) (*string, bool) {
	raw, present := c.body[field]
	if !present {
		return nil, true
	}
	var s string
	if string(raw) == "null" || json.Unmarshal(raw, &s) != nil {
		c.Add(field, CodeInvalidType, fmt.Sprintf("Field '%s' must be a string", field))
		return nil, false
	}
	return &s, true
}

// Length checks min <= runes(value) <= max. A max of 0 means unbounded.
func (c *Checker) Length(field, value string, min, max int, minMsg, maxMsg string) {
	n := utf8.RuneCountInString(value)
	if n < min {
		c.Add(field, CodeTooSmall, minMsg)
	}
	if max > 0 && n > max {
		c.Add(field, CodeTooBig, maxMsg)
	}
}

// Email checks for a bare address such as user@example.com.
func (c *Checker) Email(field, value string) {
	if !IsEmail(value) {
		c.Add(field, CodeInvalidFormat, "Enter a valid email")
	}
}

// URL checks for an absolute URL with a scheme and host.
func (c *Checker) URL(field, value, msg string) {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		c.Add(field, CodeInvalidFormat, msg)
	}
}

// Match checks value against re.
func (c *Checker) Match(field, value string, re *regexp.Regexp, msg string) {
	if !re.MatchString(value) {
		c.Add(field, CodeInvalidFormat, msg)
	}
}

func (c *Checker) Add(field, code, message string) {
	c.errs.Add(field, code, message)
}

func (c *Checker) Valid() bool {
	return len(c.errs.Issues) == 0
}

// Err returns a *response.ValidationError if any rule failed, else nil.
func (c *Checker) Err() error {
	return c.errs.Err()
}

// IsEmail reports whether s is a bare address with a dotted domain.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
