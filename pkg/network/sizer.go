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

package network

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// PrefixLength computes the CIDR prefix length for a TPU node with the
// given core count, sized for one address per ratio cores with a floor of
// eight cores' worth of addresses:
//
//	prefixLength = 33 - bitLength(max(8, cores/ratio))
//
// Example: 8 cores at ratio 4 yields max(8, 2) = 8, bitLength 4, prefix 29.
// The ratio must be positive; callers validate it before sizing.
func PrefixLength(cores, ratio int) int {
	n := cores / ratio
	if n < 8 {
		n = 8
	}
	return 33 - bits.Len(uint(n))
}

// CoreCount extracts the core count from an accelerator type such as
// "v2-8" or "v3-128".
func CoreCount(acceleratorType string) (int, error) {
	parts := strings.SplitN(acceleratorType, "-", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("accelerator type %q is not of the form <family>-<cores>", acceleratorType)
	}
	cores, err := strconv.Atoi(parts[1])
	if err != nil || cores <= 0 {
		return 0, fmt.Errorf("accelerator type %q has an invalid core count", acceleratorType)
	}
	return cores, nil
}
