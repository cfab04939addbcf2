/**
 * Copyright 2025 Avroline Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package avro

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of a codec Error
type ErrorCode int

const (
	// ErrInvalidSchema indicates a schema that violates the schema rules,
	// detected before any input byte is consumed
	ErrInvalidSchema ErrorCode = iota + 1
	// ErrTruncated indicates input that ended before the schema-declared
	// shape was satisfied
	ErrTruncated
	// ErrInvalidEncoding indicates input bytes that are present but do not
	// form a valid instance of the declared type
	ErrInvalidEncoding
)

// String returns a human readable representation of an ErrorCode
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidSchema:
		return "invalid schema"
	case ErrTruncated:
		return "truncated input"
	case ErrInvalidEncoding:
		return "invalid encoding"
	default:
		return fmt.Sprintf("unknown error code %d", int(c))
	}
}

// Error provides a codec-specific error container.
// Every failure reported by this package carries exactly one of the three
// ErrorCode values; no error is ever swallowed or downgraded.
type Error struct {
	code ErrorCode
	str  string
}

// NewError creates a new Error.
func NewError(code ErrorCode, str string) (err Error) {
	return Error{code, str}
}

func newError(code ErrorCode, format string, args ...interface{}) (err Error) {
	return Error{code, fmt.Sprintf(format, args...)}
}

// Error returns a human readable representation of an Error
// Same as Error.String()
func (e Error) Error() string {
	return e.String()
}

// String returns a human readable representation of an Error
func (e Error) String() string {
	if len(e.str) > 0 {
		return fmt.Sprintf("%s: %s", e.code.String(), e.str)
	}
	return e.code.String()
}

// Code returns the ErrorCode of an Error
func (e Error) Code() ErrorCode {
	return e.code
}

// CodeOf extracts the ErrorCode carried by err, unwrapping wrapped errors
// as needed. The bool result is false when err carries no ErrorCode.
func CodeOf(err error) (ErrorCode, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.code, true
	}
	return 0, false
}
