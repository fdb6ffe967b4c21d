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
	"tpu-toolkit/pkg/tpunode"
)

var (
	cleanupJobID      string
	cleanupProject    string
	cleanupZone       string
	cleanupKeepBucket bool
)

func init() {
	rootCmd.AddCommand(cleanupCmd)

	defaults := config.FromEnv()
	cleanupCmd.Flags().StringVar(&cleanupJobID, "job-id", "", "Identifier of the run whose resources should be removed. Required.")
	cleanupCmd.Flags().StringVarP(&cleanupProject, "project", "p", defaults.Project, "Google Cloud project the resources live in.")
	cleanupCmd.Flags().StringVar(&cleanupZone, "zone", defaults.Zone, "Zone the TPU node was created in.")
	cleanupCmd.Flags().BoolVar(&cleanupKeepBucket, "keep-bucket", false, "Keep the bucket and its contents.")

	_ = cleanupCmd.MarkFlagRequired("job-id")
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Removes the resources left behind by a training run.",
	Long: `The 'cleanup' command deletes the TPU node, the reserved address range,
and the storage bucket of a previous run, identified by its job ID.
Each deletion is attempted independently: resources a partial run never
created simply report an error and are skipped.`,
	Run:          runCleanupCmd,
	SilenceUsage: true,
}

func runCleanupCmd(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		logging.Fatal("Failed to create storage client: %v", err)
	}
	defer storageClient.Close()
	computeService, err := compute.NewService(ctx)
	if err != nil {
		logging.Fatal("Failed to create compute service: %v", err)
	}
	tpuService, err := tpu.NewService(ctx)
	if err != nil {
		logging.Fatal("Failed to create TPU service: %v", err)
	}

	nodes := tpunode.NewClient(tpuService, cleanupProject, cleanupZone)
	if err := nodes.DeleteNode(ctx, cleanupJobID); err != nil {
		logging.Error("Could not delete TPU node %s: %v", cleanupJobID, err)
	}

	addresses := network.NewClient(computeService, cleanupProject)
	if err := addresses.ReleaseCIDR(ctx, cleanupJobID); err != nil {
		logging.Error("Could not release address range %s: %v", cleanupJobID, err)
	}

	if !cleanupKeepBucket {
		buckets := gcs.NewClient(gcs.NewGoogleStore(storageClient, cleanupProject), afero.NewOsFs())
		if err := buckets.DeleteBucket(ctx, cleanupJobID); err != nil {
			logging.Error("Could not delete bucket %s: %v", cleanupJobID, err)
		}
	}

	logging.Info("Cleanup of %s finished.", cleanupJobID)
}
