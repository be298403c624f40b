package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 64
	MaxEmailLength    = 254
	MaxPhoneLength    = 32
	MaxBioLength      = 1024

	MinUsernameLength = 1
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]*$`)

// FieldError names the offending field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func fieldErr(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidateUsername checks a display name.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength {
		return fieldErr("username", "cannot be empty")
	}
	if n > MaxUsernameLength {
		return fieldErr("username", "cannot exceed %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidateEmail accepts an empty email; a non-empty one must parse as a bare address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if len(email) > MaxEmailLength {
		return fieldErr("email", "cannot exceed %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fieldErr("email", "invalid email address")
	}
	return nil
}

// ValidatePhoneNumber accepts an empty phone number.
func ValidatePhoneNumber(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if len(phone) > MaxPhoneLength {
		return fieldErr("phone_number", "cannot exceed %d characters", MaxPhoneLength)
	}
	if !phoneRegex.MatchString(phone) {
		return fieldErr("phone_number", "may contain only digits, spaces, '+', '-', '(' and ')'")
	}
	return nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fieldErr("bio", "cannot exceed %d characters", MaxBioLength)
	}
	return nil
}

// ValidateProfileFields runs every text check and returns the first failure.
func ValidateProfileFields(username, email, phone, bio string) error {
	for _, err := range []error{
		ValidateUsername(username),
		ValidateEmail(email),
		ValidatePhoneNumber(phone),
		ValidateBio(bio),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
