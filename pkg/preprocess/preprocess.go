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

// Package preprocess prepares the local training data before upload: it
// runs the dataset conversion script and extracts the gzip archives the
// script leaves behind.
package preprocess

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"tpu-toolkit/pkg/logging"
	"tpu-toolkit/pkg/shell"
)

// Converter runs an external conversion script over the data directory and
// decompresses its output in place.
type Converter struct {
	fs     afero.Fs
	script string
}

// New builds a converter around the given conversion script.
func New(fs afero.Fs, script string) *Converter {
	return &Converter{fs: fs, script: script}
}

// Run converts the raw data and extracts every .gz archive under dataDir,
// removing each archive once its contents are written.
func (c *Converter) Run(dataDir string) error {
	res := shell.ExecuteCommand("python3", c.script, "--directory=./"+dataDir)
	if res.ExitCode != 0 {
		return fmt.Errorf("conversion script exited with code %d: %s", res.ExitCode, res.Stderr)
	}
	return c.extractArchives(dataDir)
}

func (c *Converter) extractArchives(dataDir string) error {
	root := filepath.Clean(dataDir)
	return afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".gz") {
			return nil
		}
		if err := c.extract(path); err != nil {
			return err
		}
		logging.Info("Extracted %s to %s", path, strings.TrimSuffix(path, ".gz"))
		return c.fs.Remove(path)
	})
}

func (c *Converter) extract(path string) error {
	in, err := c.fs.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("reading gzip header of %q: %w", path, err)
	}
	defer zr.Close()

	out, err := c.fs.Create(strings.TrimSuffix(path, ".gz"))
	if err != nil {
		return fmt.Errorf("creating %q: %w", strings.TrimSuffix(path, ".gz"), err)
	}
	defer out.Close()

	if _, err := io.Copy(out, zr); err != nil {
		return fmt.Errorf("extracting %q: %w", path, err)
	}
	return nil
}
