// Package curated implements the error values used throughout the emulator.
//
// Errors are created with Errorf() from one of the patterns in messages.go.
// Keeping the pattern inside the error value means call sites can test for a
// specific fault with Is() or Has() without string matching, while the
// rendered message still carries the offending values (opcode byte, address,
// and so on).
package curated

import (
	"fmt"
	"strings"
)

type curated struct {
	pattern string
	values  []interface{}
}

// Errorf creates a new curated error. The first argument is named "pattern"
// rather than "format" because the same string is what Is() and Has() match
// against.
func Errorf(pattern string, values ...interface{}) error {
	return curated{
		pattern: pattern,
		values:  values,
	}
}

// Error returns the formatted message, dropping the leading ": " separated
// part when the second part repeats it. Later repeats are left as they are.
//
// Implements the go language error interface.
func (er curated) Error() string {
	s := fmt.Errorf(er.pattern, er.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}

	return strings.Join(p, ": ")
}

// IsAny checks if the error is a curated error.
func IsAny(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(curated)
	return ok
}

// Is checks if the error is a curated error with the specified pattern.
func Is(err error, pattern string) bool {
	if err == nil {
		return false
	}

	if er, ok := err.(curated); ok {
		return er.pattern == pattern
	}

	return false
}

// Has checks if the specified pattern appears anywhere in the error chain.
func Has(err error, pattern string) bool {
	if !IsAny(err) {
		return false
	}

	if Is(err, pattern) {
		return true
	}

	er := err.(curated)
	for i := range er.values {
		if e, ok := er.values[i].(error); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}

	return false
}
