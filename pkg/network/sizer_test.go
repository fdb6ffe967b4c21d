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

import "testing"

func TestPrefixLength(t *testing.T) {
	tests := []struct {
		name  string
		cores int
		ratio int
		want  int
	}{
		{name: "v2-8 at default ratio", cores: 8, ratio: 4, want: 29},
		{name: "v2-32 at default ratio", cores: 32, ratio: 4, want: 29},
		{name: "floor applies below 8 cores worth", cores: 4, ratio: 4, want: 29},
		{name: "single core", cores: 1, ratio: 4, want: 29},
		{name: "v3-128", cores: 128, ratio: 4, want: 27},
		{name: "v2-512", cores: 512, ratio: 4, want: 25},
		{name: "ratio of one", cores: 256, ratio: 1, want: 24},
		{name: "large pod slice", cores: 2048, ratio: 4, want: 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrefixLength(tt.cores, tt.ratio)
			if got != tt.want {
				t.Errorf("PrefixLength(%d, %d) = %d, want %d", tt.cores, tt.ratio, got, tt.want)
			}
			if got < 1 || got > 32 {
				t.Errorf("PrefixLength(%d, %d) = %d, outside [1, 32]", tt.cores, tt.ratio, got)
			}
		})
	}
}

func TestCoreCount(t *testing.T) {
	tests := []struct {
		acceleratorType string
		want            int
		wantErr         bool
	}{
		{acceleratorType: "v2-8", want: 8},
		{acceleratorType: "v2-32", want: 32},
		{acceleratorType: "v3-2048", want: 2048},
		{acceleratorType: "v2", wantErr: true},
		{acceleratorType: "v2-", wantErr: true},
		{acceleratorType: "v2-zero", wantErr: true},
		{acceleratorType: "v2--8", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.acceleratorType, func(t *testing.T) {
			got, err := CoreCount(tt.acceleratorType)
			if tt.wantErr {
				if err == nil {
					t.Errorf("CoreCount(%q) expected error, got %d", tt.acceleratorType, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CoreCount(%q) failed: %v", tt.acceleratorType, err)
			}
			if got != tt.want {
				t.Errorf("CoreCount(%q) = %d, want %d", tt.acceleratorType, got, tt.want)
			}
		})
	}
}
