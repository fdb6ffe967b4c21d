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
	"tpu-toolkit/pkg/logging"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tputrain",
	Short: "Provisions Cloud TPU training resources and runs a training job.",
	Long: `tputrain provisions the cloud resources a Cloud TPU training job needs
(a storage bucket, a reserved address range, and the TPU node itself),
hands the job off to the training process, and cleans the resources up
again afterwards. Every resource is named after the job identifier so a
failed run can still be located and removed.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output.")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Fatal("%v", err)
	}
}
