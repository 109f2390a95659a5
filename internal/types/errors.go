// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"strings"

	"github.com/pkg/errors"
)

// Failure kinds. Use errors.Is against these values to classify an
// error returned from the ingestion path.
var (
	// ErrFileAccess indicates that a file was absent, unreadable, or
	// that its location was malformed. It is a caller-input problem.
	ErrFileAccess = errors.New("file access failure")
	// ErrStorageAccess indicates a backend-side object storage problem
	// such as a network, authorization, or missing-object error. It
	// may be transient.
	ErrStorageAccess = errors.New("storage access failure")
	// ErrParserNotFound indicates that no parser is registered for a
	// schema. It is a configuration error.
	ErrParserNotFound = errors.New("parser not found")
	// ErrParsing indicates a failure while consuming a file's contents.
	ErrParsing = errors.New("parsing failure")
)

// Error is a classified failure. It matches its Kind with errors.Is
// and unwraps to the original cause.
type Error struct {
	Kind     error  // One of the Err* sentinels.
	Location string // The file location, if known.
	Msg      string // Additional context.

	cause error
}

var _ interface {
	Cause() error
	Is(error) bool
	Unwrap() error
} = (*Error)(nil)

// FileAccessError returns an error classified as ErrFileAccess.
func FileAccessError(location string, cause error, msg string) error {
	return &Error{Kind: ErrFileAccess, Location: location, Msg: msg, cause: cause}
}

// StorageAccessError returns an error classified as ErrStorageAccess.
func StorageAccessError(location string, cause error, msg string) error {
	return &Error{Kind: ErrStorageAccess, Location: location, Msg: msg, cause: cause}
}

// ParserNotFoundError returns an error classified as
// ErrParserNotFound.
func ParserNotFoundError(schema Schema) error {
	return &Error{Kind: ErrParserNotFound, Msg: "no parser registered for schema " + schema.String()}
}

// ParsingError returns an error classified as ErrParsing.
func ParsingError(location string, cause error, msg string) error {
	return &Error{Kind: ErrParsing, Location: location, Msg: msg, cause: cause}
}

// WithLocation returns a copy of a classified error with its Location
// set, if the error does not already carry one. Other errors are
// returned unchanged.
func WithLocation(err error, location string) error {
	var typed *Error
	if !errors.As(err, &typed) || typed.Location != "" {
		return err
	}
	cpy := *typed
	cpy.Location = location
	return &cpy
}

// Cause returns the underlying cause for compatibility with
// [errors.Cause].
func (e *Error) Cause() error { return e.cause }

// Error implements error.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Location != "" {
		sb.WriteString(" [")
		sb.WriteString(e.Location)
		sb.WriteString("]")
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

// Is matches the failure kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// KindOf returns a short label for the failure kind of the error,
// suitable for use as a metric label.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrFileAccess):
		return "file_access"
	case errors.Is(err, ErrStorageAccess):
		return "storage_access"
	case errors.Is(err, ErrParserNotFound):
		return "parser_not_found"
	case errors.Is(err, ErrParsing):
		return "parsing"
	default:
		return "unknown"
	}
}
