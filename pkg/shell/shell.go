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

// Package shell runs external commands and captures their outcome.
package shell

import (
	"bytes"
	"os/exec"
	"strings"

	"tpu-toolkit/pkg/logging"
)

// Result holds the outcome of an executed command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Command wraps a single external command invocation.
type Command struct {
	name  string
	args  []string
	input string
}

// NewCommand prepares a command without running it.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: args}
}

// SetInput provides the command's standard input.
func (c *Command) SetInput(input string) {
	c.input = input
}

// Execute runs the command and waits for it to finish. A failure to start
// the process at all is reported with exit code -1 and the launch error in
// Stderr.
func (c *Command) Execute() Result {
	logging.Debug("Executing: %s %s", c.name, strings.Join(c.args, " "))
	cmd := exec.Command(c.name, c.args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.input != "" {
		cmd.Stdin = strings.NewReader(c.input)
	}

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			if stderr.Len() > 0 {
				stderr.WriteString("\n")
			}
			stderr.WriteString(err.Error())
		}
	}

	return Result{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
}

// ExecuteCommand runs a command to completion and returns its result.
func ExecuteCommand(name string, args ...string) Result {
	return NewCommand(name, args...).Execute()
}
