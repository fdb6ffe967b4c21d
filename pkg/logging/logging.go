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

// Package logging provides a thin wrapper around logrus so that the rest
// of the toolkit logs through a single configured instance.
package logging

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	interactive := isatty.IsTerminal(os.Stderr.Fd())
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:   interactive,
		DisableColors: !interactive,
		FullTimestamp: true,
	})
	if !interactive {
		color.NoColor = true
	}
}

// SetVerbose enables debug-level output.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Info logs an informational progress message.
func Info(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Debug logs a debug message, visible only with SetVerbose(true).
func Debug(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Error logs an error that does not abort the run.
func Error(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Fatal logs the message highlighted in red and exits with a non-zero
// status.
func Fatal(format string, args ...interface{}) {
	log.Fatalf(color.RedString(format), args...)
}
