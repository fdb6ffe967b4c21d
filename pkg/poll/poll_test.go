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

package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwaitCompletes(t *testing.T) {
	checks := 0
	err := Await(context.Background(), time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		checks++
		return checks >= 3, nil
	})
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if checks != 3 {
		t.Errorf("expected 3 checks, got %d", checks)
	}
}

func TestAwaitPropagatesCheckError(t *testing.T) {
	remoteErr := errors.New("operation failed")
	err := Await(context.Background(), time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		return false, remoteErr
	})
	if !errors.Is(err, remoteErr) {
		t.Errorf("Await error = %v, want %v", err, remoteErr)
	}
}

func TestAwaitHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Await(ctx, time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Await error = %v, want context.Canceled", err)
	}
}

func TestAwaitTimesOut(t *testing.T) {
	err := Await(context.Background(), time.Millisecond, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Await error = %v, want context.DeadlineExceeded", err)
	}
}
