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

// Package poll waits on long-running remote operations by checking their
// status at a fixed interval.
package poll

import (
	"context"
	"time"
)

// Await calls check at the given interval until it reports done, returns
// an error, or the context is cancelled. A timeout of zero means wait
// indefinitely, matching the remote services' own behavior.
func Await(ctx context.Context, interval, timeout time.Duration, check func(ctx context.Context) (bool, error)) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := check(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
