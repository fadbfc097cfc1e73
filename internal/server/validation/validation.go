// Package validation holds the shape rules for account fields. Every
// function returns nil or an error matching common.ErrValidation.
package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/dmitrijs2005/minibank/internal/common"
)

const (
	MaxUsernameLength = 50
	MaxUIDLength      = 50
	// bcrypt refuses longer input.
	MaxPasswordBytes = 72
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe    = regexp.MustCompile(`^[\d\s\-\(\)\+]{10,20}$`)
)

func invalid(msg string) error {
	return common.NewError(common.CodeValidation, msg)
}

func Username(s string) error {
	if s == "" || len(s) > MaxUsernameLength {
		return invalid(fmt.Sprintf("Username must be 1-%d characters", MaxUsernameLength))
	}
	if !usernameRe.MatchString(s) {
		return invalid("Username may contain only letters, digits and underscores")
	}
	return nil
}

func UID(s string) error {
	if s == "" || utf8.RuneCountInString(s) > MaxUIDLength {
		return invalid(fmt.Sprintf("UID must be 1-%d characters", MaxUIDLength))
	}
	return nil
}

// Password only checks length; minLen comes from configuration.
func Password(s string, minLen int) error {
	if utf8.RuneCountInString(s) < minLen {
		return invalid(fmt.Sprintf("Password must be at least %d characters", minLen))
	}
	if len(s) > MaxPasswordBytes {
		return invalid(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

func Email(s string) error {
	if !emailRe.MatchString(s) {
		return invalid("Invalid email address")
	}
	return nil
}

func Phone(s string) error {
	if !phoneRe.MatchString(s) {
		return invalid("Invalid phone number")
	}
	return nil
}
