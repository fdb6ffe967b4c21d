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

// Package manifest records which cloud resources a run provisioned, so a
// run that dies mid-flight still leaves a machine-readable trail for
// manual cleanup.
package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"
)

// RunManifestTemplate is the Go template for the per-run resource record.
const RunManifestTemplate = `jobId: {{.JobID}}
project: {{.Project}}
zone: {{.Zone}}
bucket: {{.Bucket}}
address:
  name: {{.AddressName}}
  cidr: {{.CIDR}}
tpuNode:
  name: {{.NodeName}}
  acceleratorType: {{.AcceleratorType}}
  serviceAccount: {{.ServiceAccount}}
`

// Options holds the resource identities of one provisioning run.
type Options struct {
	JobID           string
	Project         string
	Zone            string
	Bucket          string
	AddressName     string
	CIDR            string
	NodeName        string
	AcceleratorType string
	ServiceAccount  string
}

// Generate renders the run manifest content.
func Generate(opts Options) (string, error) {
	tmpl, err := template.New("runManifest").Parse(RunManifestTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse run manifest template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("failed to execute run manifest template: %w", err)
	}
	return buf.String(), nil
}

// Write renders the manifest and stores it as job-<id>.yaml under dir,
// creating the directory if needed. It returns the written path.
func Write(fs afero.Fs, dir string, opts Options) (string, error) {
	content, err := Generate(opts)
	if err != nil {
		return "", err
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create manifest directory %q: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("job-%s.yaml", opts.JobID))
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write run manifest to %q: %w", path, err)
	}
	return path, nil
}
