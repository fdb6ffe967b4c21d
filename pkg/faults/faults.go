// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package faults classifies the failures a provisioning run can hit, so
// callers can tell a rejected remote request apart from a caller mistake.
package faults

import (
	"errors"
	"fmt"
)

// Kind tags the failure class of an Error.
type Kind int

const (
	// Provisioning means the remote service rejected a resource creation.
	Provisioning Kind = iota
	// Allocation means an address reservation failed; the wrapped cause
	// carries the remote error payload.
	Allocation
	// NamingConflict means an object key collides with a local filesystem
	// path during download.
	NamingConflict
	// InvalidArgument means the caller attempted an unsafe operation, such
	// as a full-container delete without the explicit acknowledgment.
	InvalidArgument
)

func (k Kind) String() string {
	switch k {
	case Provisioning:
		return "provisioning"
	case Allocation:
		return "allocation"
	case NamingConflict:
		return "naming conflict"
	case InvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Error is a kind-tagged failure. It wraps the underlying cause, if any,
// so root-cause inspection with errors.Is and errors.As keeps working.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a kind-tagged error with no underlying cause.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with a kind and a context message. Returns nil if err is
// nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether any error in err's chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}
