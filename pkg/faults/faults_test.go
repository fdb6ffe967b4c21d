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

package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	cause := errors.New("quota exhausted")

	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{
			name: "direct match",
			err:  New(InvalidArgument, "empty prefix"),
			kind: InvalidArgument,
			want: true,
		},
		{
			name: "wrapped cause keeps kind",
			err:  Wrap(Provisioning, cause, "could not create bucket"),
			kind: Provisioning,
			want: true,
		},
		{
			name: "kind mismatch",
			err:  New(Allocation, "reservation rejected"),
			kind: NamingConflict,
			want: false,
		},
		{
			name: "re-wrapped by a stage message",
			err:  fmt.Errorf("stage failed: %w", New(Allocation, "reservation rejected")),
			kind: Allocation,
			want: true,
		},
		{
			name: "plain error has no kind",
			err:  cause,
			kind: Provisioning,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("IsKind(%v, %v) = %v, want %v", tt.err, tt.kind, got, tt.want)
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("backend said no")
	err := Wrap(Allocation, cause, "reserving range %q", "job-1")

	if !errors.Is(err, cause) {
		t.Errorf("wrapped error should match its cause with errors.Is")
	}
	want := `reserving range "job-1": backend said no`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(Provisioning, nil, "no-op"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}
