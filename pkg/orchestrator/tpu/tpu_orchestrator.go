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

package tpu

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"tpu-toolkit/pkg/faults"
	"tpu-toolkit/pkg/gcs"
	"tpu-toolkit/pkg/logging"
	"tpu-toolkit/pkg/manifest"
	"tpu-toolkit/pkg/network"
	"tpu-toolkit/pkg/orchestrator"
	"tpu-toolkit/pkg/tpunode"
)

// TPUOrchestrator implements orchestrator.Orchestrator for Cloud TPU
// training runs. The workflow is strictly sequential: every remote
// operation is awaited before the next step starts, and any failure
// aborts the run without rolling back the resources created so far. The
// resources all carry the job identifier as their name, so an aborted
// run can still be cleaned up by hand (or with the cleanup command).
type TPUOrchestrator struct {
	Storage      orchestrator.StorageService
	Addresses    orchestrator.AddressService
	Nodes        orchestrator.NodeService
	Runner       orchestrator.JobRunner
	Preprocessor orchestrator.Preprocessor
	Fs           afero.Fs
}

// NewTPUOrchestrator assembles the orchestrator from its collaborators.
func NewTPUOrchestrator(storage orchestrator.StorageService, addresses orchestrator.AddressService,
	nodes orchestrator.NodeService, runner orchestrator.JobRunner,
	preprocessor orchestrator.Preprocessor, fs afero.Fs) *TPUOrchestrator {
	return &TPUOrchestrator{
		Storage:      storage,
		Addresses:    addresses,
		Nodes:        nodes,
		Runner:       runner,
		Preprocessor: preprocessor,
		Fs:           fs,
	}
}

// RunJob provisions the bucket, address range, and TPU node for the job,
// hands off to the training process, and tears the node and address down
// again. The node is always deleted before its address range is released;
// the range is still referenced until the node is gone.
func (o *TPUOrchestrator) RunJob(ctx context.Context, job orchestrator.TrainingJob) error {
	logging.Info("Starting training run %s", job.JobID)

	if job.Preprocess {
		if err := o.Preprocessor.Run(job.DataDir); err != nil {
			return errors.Wrap(err, "preprocessing failed, aborting training")
		}
	}

	if err := o.Storage.CreateBucket(ctx, job.JobID, job.StorageLocation); err != nil {
		return errors.Wrap(err, "could not create the bucket for this training job")
	}
	if err := o.Storage.UploadDir(ctx, job.JobID, job.DataDir); err != nil {
		return errors.Wrap(err, "could not upload training data to the bucket")
	}

	reservation, node, err := o.provisionCompute(ctx, job)
	if err != nil {
		return err
	}

	if err := o.Storage.GrantBucketAccess(ctx, job.JobID, node.ServiceAccount, gcs.RoleObjectAdmin); err != nil {
		return errors.Wrap(err, "could not grant the TPU access to the bucket")
	}

	o.recordManifest(job, reservation, node)

	// A training failure is logged rather than returned so the resources
	// provisioned above are still torn down.
	if err := o.Runner.Run(job); err != nil {
		logging.Error("Training failed: %v", err)
	}

	if err := o.teardown(ctx, job); err != nil {
		return err
	}

	if err := o.archiveResults(ctx, job); err != nil {
		return err
	}

	logging.Info("Model results are still available in %s/%s", job.JobID, job.OutputDir)
	return nil
}

// provisionCompute reserves the address range and creates the TPU node on
// it. The reservation must complete first: the node's network config
// embeds the reserved CIDR.
func (o *TPUOrchestrator) provisionCompute(ctx context.Context, job orchestrator.TrainingJob) (network.Reservation, tpunode.Node, error) {
	if job.CoreRatio < 1 {
		return network.Reservation{}, tpunode.Node{}, faults.New(faults.InvalidArgument,
			"core ratio must be at least 1, got %d", job.CoreRatio)
	}
	cores, err := network.CoreCount(job.AcceleratorType)
	if err != nil {
		return network.Reservation{}, tpunode.Node{}, errors.Wrap(err, "could not size the CIDR for this TPU node")
	}
	prefixLength := network.PrefixLength(cores, job.CoreRatio)

	reservation, err := o.Addresses.ReserveCIDR(ctx, job.Network, job.JobID, prefixLength, job.ExplicitAddress)
	if err != nil {
		return network.Reservation{}, tpunode.Node{}, errors.Wrap(err, "could not reserve a CIDR for this TPU node")
	}

	node, err := o.Nodes.CreateNode(ctx, tpunode.Spec{
		Name:              job.JobID,
		AcceleratorType:   job.AcceleratorType,
		TensorflowVersion: job.Framework,
		Network:           job.Network,
		CIDRBlock:         reservation.CIDR(),
		Preemptible:       job.Preemptible,
		Reserved:          job.Reserved,
	})
	if err != nil {
		return network.Reservation{}, tpunode.Node{}, errors.Wrap(err, "could not create a new TPU device")
	}
	return reservation, node, nil
}

// teardown deletes the TPU node and then releases its address range, in
// that order.
func (o *TPUOrchestrator) teardown(ctx context.Context, job orchestrator.TrainingJob) error {
	logging.Info("Cleaning up unused resources.")
	if err := o.Nodes.DeleteNode(ctx, job.JobID); err != nil {
		return errors.Wrap(err, "could not delete the TPU node")
	}
	if err := o.Addresses.ReleaseCIDR(ctx, job.JobID); err != nil {
		return errors.Wrap(err, "could not release the reserved CIDR")
	}
	return nil
}

// archiveResults pulls the output prefix down to a local results
// directory and removes the training data from the bucket. The output
// prefix itself is retained for downstream consumers.
func (o *TPUOrchestrator) archiveResults(ctx context.Context, job orchestrator.TrainingJob) error {
	resultsDir := "results-" + job.JobID
	if err := o.Storage.DownloadPrefix(ctx, job.JobID, job.OutputDir, resultsDir); err != nil {
		return errors.Wrap(err, "could not download the training results")
	}
	if err := o.Storage.DeletePrefix(ctx, job.JobID, job.DataDir, false); err != nil {
		return errors.Wrap(err, "could not delete the training data from the bucket")
	}
	return nil
}

// recordManifest writes the run manifest next to the local output. The
// manifest is a convenience for manual cleanup; failing to write it does
// not abort the run.
func (o *TPUOrchestrator) recordManifest(job orchestrator.TrainingJob, reservation network.Reservation, node tpunode.Node) {
	path, err := manifest.Write(o.Fs, job.OutputDir, manifest.Options{
		JobID:           job.JobID,
		Project:         job.Project,
		Zone:            job.Zone,
		Bucket:          job.JobID,
		AddressName:     job.JobID,
		CIDR:            reservation.CIDR(),
		NodeName:        node.Name,
		AcceleratorType: job.AcceleratorType,
		ServiceAccount:  node.ServiceAccount,
	})
	if err != nil {
		logging.Error("Could not record the run manifest: %v", err)
		return
	}
	logging.Info("Run manifest written to %s", path)
}
