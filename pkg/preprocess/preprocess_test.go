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

package preprocess

import (
	"bytes"
	"compress/gzip"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func writeGzip(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %q: %v", path, err)
	}
}

func TestExtractArchives(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeGzip(t, fs, "data/train-images.gz", "images")
	writeGzip(t, fs, "data/nested/train-labels.gz", "labels")
	if err := afero.WriteFile(fs, "data/readme.txt", []byte("plain"), 0o644); err != nil {
		t.Fatalf("writing plain file: %v", err)
	}

	c := New(fs, "./convert_to_records.py")
	if err := c.extractArchives("data/"); err != nil {
		t.Fatalf("extractArchives failed: %v", err)
	}

	got, err := afero.ReadFile(fs, "data/train-images")
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(got) != "images" {
		t.Errorf("extracted content = %q, want %q", got, "images")
	}

	if _, err := fs.Stat("data/train-images.gz"); err == nil {
		t.Errorf("archive should be removed after extraction")
	}
	if _, err := fs.Stat("data/nested/train-labels"); err != nil {
		t.Errorf("nested archive was not extracted: %v", err)
	}
	if got, _ := afero.ReadFile(fs, "data/readme.txt"); string(got) != "plain" {
		t.Errorf("plain files must be left alone, got %q", got)
	}
}

func TestExtractArchivesRejectsCorruptArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "data/broken.gz", []byte("not gzip"), 0o644); err != nil {
		t.Fatalf("writing corrupt archive: %v", err)
	}

	c := New(fs, "./convert_to_records.py")
	if err := c.extractArchives("data/"); err == nil {
		t.Errorf("expected an error for a corrupt archive")
	}
}
