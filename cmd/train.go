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

package cmd

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/tpu/v1"

	"tpu-toolkit/pkg/config"
	"tpu-toolkit/pkg/gcs"
	"tpu-toolkit/pkg/logging"
	"tpu-toolkit/pkg/network"
	"tpu-toolkit/pkg/orchestrator"
	tpuorch "tpu-toolkit/pkg/orchestrator/tpu"
	"tpu-toolkit/pkg/preprocess"
	"tpu-toolkit/pkg/tpunode"
	"tpu-toolkit/pkg/trainer"
)

const (
	convertScript  = "./convert_to_records.py"
	trainingScript = "./models/official/mnist/mnist_tpu.py"
)

var trainCfg config.Config

func init() {
	rootCmd.AddCommand(trainCmd)

	// Flag defaults come from the environment, so container deployments
	// keep working unchanged while interactive use can override per run.
	defaults := config.FromEnv()
	trainCmd.Flags().StringVarP(&trainCfg.Project, "project", "p", defaults.Project, "Google Cloud project to provision resources in.")
	trainCmd.Flags().StringVar(&trainCfg.Network, "network", defaults.Network, "VPC network to reserve the TPU address range on.")
	trainCmd.Flags().StringVar(&trainCfg.Zone, "zone", defaults.Zone, "Zone to create the TPU node in.")
	trainCmd.Flags().StringVarP(&trainCfg.TPUType, "tpu-type", "t", defaults.TPUType, "Accelerator type, e.g. 'v2-8' or 'v3-32'.")
	trainCmd.Flags().StringVar(&trainCfg.Framework, "framework", defaults.Framework, "TensorFlow version the TPU node must be compatible with.")
	trainCmd.Flags().StringVar(&trainCfg.JobID, "job-id", defaults.JobID, "Identifier every provisioned resource is named after.")
	trainCmd.Flags().BoolVar(&trainCfg.Preemptible, "preemptible", defaults.Preemptible, "Create a preemptible TPU node.")
	trainCmd.Flags().BoolVar(&trainCfg.Reserved, "reserved", defaults.Reserved, "Use reserved (commitment) quota for the TPU node.")
	trainCmd.Flags().StringVar(&trainCfg.ExplicitAddress, "address", defaults.ExplicitAddress, "Reserve this exact address instead of auto-selecting one.")
	trainCmd.Flags().StringVar(&trainCfg.StorageLocation, "storage-location", defaults.StorageLocation, "Location of the training bucket.")
	trainCmd.Flags().BoolVar(&trainCfg.Preprocess, "preprocess", defaults.Preprocess, "Run the data conversion step before uploading.")
	trainCmd.Flags().StringVar(&trainCfg.DataDir, "data-dir", defaults.DataDir, "Local directory holding the training data.")
	trainCmd.Flags().StringVar(&trainCfg.OutputDir, "output-dir", defaults.OutputDir, "Bucket prefix the model writes its results to.")
	trainCmd.Flags().IntVar(&trainCfg.CoreRatio, "core-ratio", defaults.CoreRatio, "TPU cores per reserved IP address.")
	trainCmd.Flags().IntVar(&trainCfg.Iterations, "iterations", defaults.Iterations, "Training iterations per loop.")
	trainCmd.Flags().IntVar(&trainCfg.TrainSteps, "train-steps", defaults.TrainSteps, "Total training steps.")
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Provisions TPU training resources, runs the job, and tears them down.",
	Long: `The 'train' command creates the storage bucket, reserves an address range
sized for the requested TPU type, starts the TPU node on that range,
grants the node's service account access to the bucket, and runs the
training process. Afterwards it deletes the node, releases the range,
downloads the results, and removes the training data from the bucket.`,
	Run:          runTrainCmd,
	SilenceUsage: true,
}

func runTrainCmd(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg := trainCfg
	if cfg.JobID == "" {
		cfg.JobID = config.NewJobID(cfg.Project)
	}

	orch, cleanup, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		logging.Fatal("Failed to initialize cloud clients: %v", err)
	}
	defer cleanup()

	if err := orch.RunJob(ctx, trainingJob(cfg)); err != nil {
		logging.Fatal("Training run %s failed: %v", cfg.JobID, err)
	}
	logging.Info("Training run %s completed.", cfg.JobID)
}

func buildOrchestrator(ctx context.Context, cfg config.Config) (orchestrator.Orchestrator, func(), error) {
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	computeService, err := compute.NewService(ctx)
	if err != nil {
		storageClient.Close()
		return nil, nil, err
	}
	tpuService, err := tpu.NewService(ctx)
	if err != nil {
		storageClient.Close()
		return nil, nil, err
	}

	fs := afero.NewOsFs()
	orch := tpuorch.NewTPUOrchestrator(
		gcs.NewClient(gcs.NewGoogleStore(storageClient, cfg.Project), fs),
		network.NewClient(computeService, cfg.Project),
		tpunode.NewClient(tpuService, cfg.Project, cfg.Zone),
		trainer.NewSubprocess(trainingScript),
		preprocess.New(fs, convertScript),
		fs,
	)
	return orch, func() { storageClient.Close() }, nil
}

func trainingJob(cfg config.Config) orchestrator.TrainingJob {
	return orchestrator.TrainingJob{
		JobID:           cfg.JobID,
		Project:         cfg.Project,
		Network:         cfg.Network,
		Zone:            cfg.Zone,
		AcceleratorType: cfg.TPUType,
		Framework:       cfg.Framework,
		Preemptible:     cfg.Preemptible,
		Reserved:        cfg.Reserved,
		ExplicitAddress: cfg.ExplicitAddress,
		StorageLocation: cfg.StorageLocation,
		Preprocess:      cfg.Preprocess,
		DataDir:         cfg.DataDir,
		OutputDir:       cfg.OutputDir,
		CoreRatio:       cfg.CoreRatio,
		Iterations:      cfg.Iterations,
		TrainSteps:      cfg.TrainSteps,
	}
}
