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

// Package gcs moves local directory trees in and out of Cloud Storage
// buckets and manages bucket-level access for the TPU's service account.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/iam"
	"github.com/spf13/afero"

	"tpu-toolkit/pkg/faults"
	"tpu-toolkit/pkg/logging"
)

// RoleObjectAdmin is the role granted to the TPU service account on the
// training bucket.
const RoleObjectAdmin = "roles/storage.objectAdmin"

// Client is the storage facade the orchestrator drives. Local paths go
// through the afero filesystem so the tree logic is testable without
// touching disk.
type Client struct {
	store Store
	fs    afero.Fs
}

// NewClient builds a storage client over the given store and local
// filesystem.
func NewClient(store Store, fs afero.Fs) *Client {
	return &Client{store: store, fs: fs}
}

// CreateBucket creates the training bucket. Name collisions and exhausted
// quota both come back from the service as a rejected creation.
func (c *Client) CreateBucket(ctx context.Context, name, location string) error {
	if err := c.store.CreateBucket(ctx, name, location); err != nil {
		return faults.Wrap(faults.Provisioning, err, "could not create bucket %q", name)
	}
	logging.Info("Created bucket %s in %s.", name, location)
	return nil
}

// UploadDir walks localDir recursively and uploads every regular file,
// keyed by its cleaned relative path, so the directory name itself becomes
// the object prefix. Re-uploading a key overwrites the prior content. A
// failure mid-walk leaves the objects uploaded so far in place; nothing is
// rolled back.
func (c *Client) UploadDir(ctx context.Context, bucket, localDir string) error {
	root := filepath.Clean(localDir)
	return afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := c.fs.Open(path)
		if err != nil {
			return fmt.Errorf("opening %q: %w", path, err)
		}
		defer f.Close()

		key := filepath.ToSlash(path)
		if err := c.store.Write(ctx, bucket, key, f); err != nil {
			return fmt.Errorf("uploading %q to gs://%s/%s: %w", path, bucket, key, err)
		}
		logging.Info("File %s uploaded to %s.", path, key)
		return nil
	})
}

// DownloadPrefix downloads every object under prefix into localDir,
// preserving the key structure and creating parent directories as needed.
// Existing local files are overwritten unconditionally, so running it
// twice yields the same tree.
func (c *Client) DownloadPrefix(ctx context.Context, bucket, prefix, localDir string) error {
	keys, err := c.store.List(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	logging.Info("Downloading all files from %s with prefix %s", bucket, prefix)

	for _, key := range keys {
		target := filepath.Join(localDir, filepath.FromSlash(key))

		// A key ending in a slash is a folder placeholder; materialize the
		// directory and move on.
		if strings.HasSuffix(key, "/") {
			if err := c.fs.MkdirAll(target, 0o755); err != nil {
				return namingConflict(bucket, key, err)
			}
			continue
		}

		if err := c.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return namingConflict(bucket, key, err)
		}
		if fi, err := c.fs.Stat(target); err == nil && fi.IsDir() {
			return namingConflict(bucket, key, fmt.Errorf("%q already exists as a directory", target))
		}

		if err := c.downloadObject(ctx, bucket, key, target); err != nil {
			return err
		}
		logging.Info("Downloaded: %s", key)
	}
	return nil
}

func (c *Client) downloadObject(ctx context.Context, bucket, key, target string) error {
	r, err := c.store.Read(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("reading gs://%s/%s: %w", bucket, key, err)
	}
	defer r.Close()

	f, err := c.fs.Create(target)
	if err != nil {
		return namingConflict(bucket, key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("writing %q: %w", target, err)
	}
	return nil
}

// DeletePrefix deletes every object under prefix. An empty prefix deletes
// the whole bucket's contents and therefore requires deleteAll as an
// explicit acknowledgment; without it the call is refused.
func (c *Client) DeletePrefix(ctx context.Context, bucket, prefix string, deleteAll bool) error {
	if prefix == "" && !deleteAll {
		return faults.New(faults.InvalidArgument,
			"refusing to delete every object in %q: an empty prefix requires the delete-all acknowledgment", bucket)
	}

	keys, err := c.store.List(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	logging.Info("Deleting all files from %s with prefix %s", bucket, prefix)
	for _, key := range keys {
		if err := c.store.Delete(ctx, bucket, key); err != nil {
			return fmt.Errorf("deleting gs://%s/%s: %w", bucket, key, err)
		}
		logging.Info("Deleted: %s", key)
	}
	return nil
}

// DeleteBucket deletes every object in the bucket and then the bucket
// itself.
func (c *Client) DeleteBucket(ctx context.Context, name string) error {
	if err := c.DeletePrefix(ctx, name, "", true); err != nil {
		return err
	}
	if err := c.store.DeleteBucket(ctx, name); err != nil {
		return fmt.Errorf("deleting bucket %q: %w", name, err)
	}
	logging.Info("Bucket %s deleted", name)
	return nil
}

// GrantBucketAccess adds a role binding for the given service account on
// the bucket. The policy is read, modified, and written back without a
// precondition, so a concurrent policy change from elsewhere is
// overwritten.
func (c *Client) GrantBucketAccess(ctx context.Context, bucket, serviceAccount, role string) error {
	policy, err := c.store.Policy(ctx, bucket)
	if err != nil {
		return fmt.Errorf("reading IAM policy of %q: %w", bucket, err)
	}
	policy.Add("serviceAccount:"+serviceAccount, iam.RoleName(role))
	if err := c.store.SetPolicy(ctx, bucket, policy); err != nil {
		return fmt.Errorf("writing IAM policy of %q: %w", bucket, err)
	}
	logging.Info("Granted the %s role to %s on %s.", role, serviceAccount, bucket)
	return nil
}

func namingConflict(bucket, key string, err error) error {
	return faults.Wrap(faults.NamingConflict, err,
		"cannot download gs://%s/%s: the local filesystem does not allow files and folders with the same name", bucket, key)
}
