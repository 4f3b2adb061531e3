// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "fmt"

// errorCategory classifies a startup failure so main can pick an exit
// code and the user knows whether to fix input or retry.
type errorCategory string

const (
	// categoryValidation means bad flags, config, or credentials. Fix
	// the input and run again.
	categoryValidation errorCategory = "validation"

	// categoryForbidden means the homeserver rejected the credentials.
	categoryForbidden errorCategory = "forbidden"

	// categoryTransient means the homeserver could not be reached.
	// Running again later may succeed.
	categoryTransient errorCategory = "transient"

	// categoryInternal means an unexpected failure.
	categoryInternal errorCategory = "internal"
)

// cliError is a categorized error with an optional remediation hint.
type cliError struct {
	Category errorCategory
	Err      error
	Hint     string
}

func (e *cliError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\nhint: " + e.Hint
}

func (e *cliError) Unwrap() error { return e.Err }

// ExitCode maps the category to a process exit status: 2 for input
// problems, 1 otherwise.
func (e *cliError) ExitCode() int {
	switch e.Category {
	case categoryValidation, categoryForbidden:
		return 2
	default:
		return 1
	}
}

// WithHint attaches a remediation hint and returns the receiver.
func (e *cliError) WithHint(hint string) *cliError {
	e.Hint = hint
	return e
}

func validation(format string, args ...any) *cliError {
	return &cliError{Category: categoryValidation, Err: fmt.Errorf(format, args...)}
}

func forbidden(format string, args ...any) *cliError {
	return &cliError{Category: categoryForbidden, Err: fmt.Errorf(format, args...)}
}

func transient(format string, args ...any) *cliError {
	return &cliError{Category: categoryTransient, Err: fmt.Errorf(format, args...)}
}

func internal(format string, args ...any) *cliError {
	return &cliError{Category: categoryInternal, Err: fmt.Errorf(format, args...)}
}
