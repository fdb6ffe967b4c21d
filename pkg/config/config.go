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

// Package config builds the run configuration once at process start from
// environment variables, with the same keys and defaults the training
// containers already use. Command-line flags may override individual
// fields afterwards; the orchestrator only ever sees the final struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Config holds every knob of a training run. It is constructed once and
// passed by value; nothing mutates it after flag parsing.
type Config struct {
	Project         string
	Network         string
	Zone            string
	TPUType         string
	Framework       string
	JobID           string
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

// FromEnv reads the configuration from the environment, applying defaults
// for anything unset. A missing JOB_ID gets a generated identifier that
// every provisioned resource will be named after.
func FromEnv() Config {
	cfg := Config{
		Project:         envOr("PROJECT", "my-project"),
		Network:         envOr("NETWORK", "default"),
		Zone:            envOr("ZONE", "us-central1-c"),
		TPUType:         envOr("TPU_TYPE", "v2-8"),
		Framework:       envOr("FRAMEWORK", "1.14"),
		JobID:           os.Getenv("JOB_ID"),
		Preemptible:     envBool("PREEMPTIBLE", false),
		Reserved:        envBool("RESERVED", false),
		ExplicitAddress: os.Getenv("EXPLICIT_ADDRESS"),
		StorageLocation: envOr("STORAGE_LOCATION", "us-central1"),
		Preprocess:      envBool("PREPROCESS", false),
		DataDir:         envOr("DATA_DIR", "data/"),
		OutputDir:       envOr("OUTPUT_DIR", "output/"),
		CoreRatio:       envInt("CORE_RATIO", 4),
		Iterations:      envInt("ITERATIONS", 4000),
		TrainSteps:      envInt("TRAIN_STEPS", 10000),
	}
	if cfg.JobID == "" {
		cfg.JobID = NewJobID(cfg.Project)
	}
	return cfg
}

// NewJobID generates the identifier a run's bucket, address reservation,
// and TPU node are all named after.
func NewJobID(project string) string {
	return fmt.Sprintf("%s-tpu-%s", project, uuid.NewString())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// envInt reads a positive integer. Every integer knob is a count, so
// garbage, zero, and negative values all fall back to the default.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
