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

package gcs

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/iam"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Store is the minimal object-store surface the client needs. The
// production implementation wraps cloud.google.com/go/storage; tests use
// an in-memory fake.
type Store interface {
	CreateBucket(ctx context.Context, name, location string) error
	Write(ctx context.Context, bucket, key string, r io.Reader) error
	Read(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Delete(ctx context.Context, bucket, key string) error
	DeleteBucket(ctx context.Context, bucket string) error
	Policy(ctx context.Context, bucket string) (*iam.Policy, error)
	SetPolicy(ctx context.Context, bucket string, policy *iam.Policy) error
}

type googleStore struct {
	client  *storage.Client
	project string
}

// NewGoogleStore returns a Store backed by Cloud Storage.
func NewGoogleStore(client *storage.Client, project string) Store {
	return &googleStore{client: client, project: project}
}

func (s *googleStore) CreateBucket(ctx context.Context, name, location string) error {
	attrs := &storage.BucketAttrs{
		Location:     location,
		StorageClass: "REGIONAL",
		UniformBucketLevelAccess: storage.UniformBucketLevelAccess{
			Enabled: true,
		},
	}
	return s.client.Bucket(name).Create(ctx, s.project, attrs)
}

func (s *googleStore) Write(ctx context.Context, bucket, key string, r io.Reader) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s *googleStore) Read(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return s.client.Bucket(bucket).Object(key).NewReader(ctx)
}

func (s *googleStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing gs://%s/%s*: %w", bucket, prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (s *googleStore) Delete(ctx context.Context, bucket, key string) error {
	return s.client.Bucket(bucket).Object(key).Delete(ctx)
}

func (s *googleStore) DeleteBucket(ctx context.Context, bucket string) error {
	return s.client.Bucket(bucket).Delete(ctx)
}

func (s *googleStore) Policy(ctx context.Context, bucket string) (*iam.Policy, error) {
	return s.client.Bucket(bucket).IAM().Policy(ctx)
}

func (s *googleStore) SetPolicy(ctx context.Context, bucket string, policy *iam.Policy) error {
	return s.client.Bucket(bucket).IAM().SetPolicy(ctx, policy)
}
