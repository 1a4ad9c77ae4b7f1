package register

import (
	"errors"
	"unicode/utf16"
)

// MinPasswordLength is the shortest password the form accepts.
const MinPasswordLength = 6

// Validation messages, in the order the rules are checked.
const (
	MsgNeedUppercase = "Please add at least one uppercase letter"
	MsgNeedDigits    = "Please add at least two numbers"
	MsgTooShort      = "Password must be at least 6 characters long"
)

var (
	ErrNoUppercase = errors.New(MsgNeedUppercase)
	ErrTooFewDigit = errors.New(MsgNeedDigits)
	ErrTooShort    = errors.New(MsgTooShort)
)

// ValidatePassword applies the strength rules in fixed order and returns the
// first one that fails, or nil.
func ValidatePassword(password string) error {
	var upper, digits int
	for i := 0; i < len(password); i++ {
		c := password[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper++
		case c >= '0' && c <= '9':
			digits++
		}
	}

	switch {
	case upper == 0:
		return ErrNoUppercase
	case digits < 2:
		return ErrTooFewDigit
	case passwordLength(password) < MinPasswordLength:
		return ErrTooShort
	}
	return nil
}

// passwordLength counts UTF-16 code units, so characters outside the BMP
// count twice, as they do in a browser.
func passwordLength(password string) int {
	n := 0
	for _, r := range password {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
