package elf

import "fmt"

// NotElf is returned when the input cannot be recognized as an ELF file at
// all: bad magic, or shorter than the magic itself.
type NotElf struct {
	Reason string
}

func (err *NotElf) Error() string {
	return fmt.Sprintf("not an elf file: %s", err.Reason)
}

func newNotElf(reason string, args ...interface{}) error {
	return &NotElf{Reason: fmt.Sprintf(reason, args...)}
}

// ParsingError is returned for anything structurally malformed past the
// magic check: an unsupported class or data encoding, truncated headers
// or tables, out of bound slices, or a failure to read the input. An
// out-of-range shstrndx is not an error (sections are left unnamed), and
// the editor operations never return one.
type ParsingError struct {
	Reason string
	Cause  error
}

func (err *ParsingError) Error() string {
	if err.Cause != nil {
		return fmt.Sprintf("%s: %s", err.Reason, err.Cause)
	}
	return err.Reason
}

func (err *ParsingError) Unwrap() error {
	return err.Cause
}

func newParsingError(reason string, args ...interface{}) error {
	return &ParsingError{Reason: fmt.Sprintf(reason, args...)}
}

func wrapParsingError(cause error, reason string, args ...interface{}) error {
	return &ParsingError{Reason: fmt.Sprintf(reason, args...), Cause: cause}
}
