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

// Package trainer hands a provisioned job off to the training process.
// The process is a black box: it reads its data from the job's bucket,
// writes its model to the output prefix, and reports success through its
// exit code.
package trainer

import (
	"fmt"

	"tpu-toolkit/pkg/logging"
	"tpu-toolkit/pkg/orchestrator"
	"tpu-toolkit/pkg/shell"
)

// Subprocess runs the training entry point as a child process.
type Subprocess struct {
	script string
}

// NewSubprocess builds a runner for the given training script.
func NewSubprocess(script string) *Subprocess {
	return &Subprocess{script: script}
}

// Run starts the training process and waits for it to finish.
func (s *Subprocess) Run(job orchestrator.TrainingJob) error {
	logging.Info("Starting training process %s for %s", s.script, job.JobID)
	res := shell.ExecuteCommand(
		"python3", s.script,
		"--tpu="+job.JobID,
		fmt.Sprintf("--data_dir=gs://%s/%s", job.JobID, job.DataDir),
		fmt.Sprintf("--model_dir=gs://%s/%s", job.JobID, job.OutputDir),
		fmt.Sprintf("--iterations=%d", job.Iterations),
		fmt.Sprintf("--train_steps=%d", job.TrainSteps),
		"--tpu_zone="+job.Zone,
		"--gcp_project="+job.Project,
		"--use_tpu=True",
	)
	if res.ExitCode != 0 {
		return fmt.Errorf("training process exited with code %d: %s", res.ExitCode, res.Stderr)
	}
	return nil
}
