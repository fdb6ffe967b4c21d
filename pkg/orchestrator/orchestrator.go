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

package orchestrator

import (
	"context"

	"tpu-toolkit/pkg/network"
	"tpu-toolkit/pkg/tpunode"
)

// TrainingJob holds all the necessary parameters to define a training run.
// Every provisioned resource (bucket, address reservation, TPU node) is
// named after JobID, so a failed run leaves a trail that can be located
// and cleaned up by that one identifier.
type TrainingJob struct {
	JobID           string
	Project         string
	Network         string
	Zone            string
	AcceleratorType string
	Framework       string
	Preemptible     bool
	Reserved        bool
	ExplicitAddress string
	StorageLocation string
	Preprocess      bool
	DataDir         string
	OutputDir       string
	CoreRatio       int
	Iterations      int
	TrainSteps      int
}

// Orchestrator provisions the resources a training job needs, hands the
// job off, and tears the resources down afterwards.
type Orchestrator interface {
	RunJob(ctx context.Context, job TrainingJob) error
}

// StorageService is the object-storage surface the orchestrator drives.
type StorageService interface {
	CreateBucket(ctx context.Context, name, location string) error
	UploadDir(ctx context.Context, bucket, localDir string) error
	DownloadPrefix(ctx context.Context, bucket, prefix, localDir string) error
	DeletePrefix(ctx context.Context, bucket, prefix string, deleteAll bool) error
	GrantBucketAccess(ctx context.Context, bucket, serviceAccount, role string) error
}

// AddressService reserves and releases the CIDR range a TPU node peers
// through.
type AddressService interface {
	ReserveCIDR(ctx context.Context, vpc, name string, prefixLength int, explicitAddress string) (network.Reservation, error)
	ReleaseCIDR(ctx context.Context, name string) error
}

// NodeService manages the TPU node lifecycle.
type NodeService interface {
	CreateNode(ctx context.Context, spec tpunode.Spec) (tpunode.Node, error)
	DeleteNode(ctx context.Context, name string) error
}

// JobRunner hands a fully provisioned job off to the external training
// process.
type JobRunner interface {
	Run(job TrainingJob) error
}

// Preprocessor prepares the local training data before upload.
type Preprocessor interface {
	Run(dataDir string) error
}
