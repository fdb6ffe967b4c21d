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

// Package tpunode manages the lifecycle of Cloud TPU nodes. Creation and
// deletion are long-running operations polled at a fixed thirty-second
// interval.
package tpunode

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/tpu/v1"

	"tpu-toolkit/pkg/faults"
	"tpu-toolkit/pkg/logging"
	"tpu-toolkit/pkg/poll"
)

const pollInterval = 30 * time.Second

// Spec describes the TPU node to create. CIDRBlock must name a range that
// is already reserved; the node embeds it in its network config.
type Spec struct {
	Name              string
	AcceleratorType   string
	TensorflowVersion string
	Network           string
	CIDRBlock         string
	Preemptible       bool
	Reserved          bool
}

// Node is a running TPU node. ServiceAccount is the provider-assigned
// identity the node authenticates to other services with.
type Node struct {
	Name           string
	ServiceAccount string
}

// Client manages TPU nodes in one project and zone.
type Client struct {
	service  *tpu.Service
	project  string
	zone     string
	interval time.Duration
}

// NewClient wraps an initialized Cloud TPU service.
func NewClient(service *tpu.Service, project, zone string) *Client {
	return &Client{service: service, project: project, zone: zone, interval: pollInterval}
}

// CreateNode creates a TPU node and waits for its operation to finish,
// then re-fetches the node so the caller gets the provider-assigned
// service account. The completed operation's error field is deliberately
// not inspected, matching the behavior this tool has always had: a
// failed-but-done create surfaces only when the node fetch comes back
// empty or the training job cannot reach the node.
func (c *Client) CreateNode(ctx context.Context, spec Spec) (Node, error) {
	node := &tpu.Node{
		AcceleratorType:   spec.AcceleratorType,
		TensorflowVersion: spec.TensorflowVersion,
		Network:           spec.Network,
		CidrBlock:         spec.CIDRBlock,
		SchedulingConfig: &tpu.SchedulingConfig{
			Preemptible: spec.Preemptible,
			Reserved:    spec.Reserved,
		},
	}

	parent := fmt.Sprintf("projects/%s/locations/%s", c.project, c.zone)
	op, err := c.service.Projects.Locations.Nodes.Create(parent, node).NodeId(spec.Name).Context(ctx).Do()
	if err != nil {
		return Node{}, faults.Wrap(faults.Provisioning, err, "could not create TPU node %q", spec.Name)
	}

	err = poll.Await(ctx, c.interval, 0, func(ctx context.Context) (bool, error) {
		logging.Info("Waiting for TPU %s to start.", spec.Name)
		status, err := c.service.Projects.Locations.Operations.Get(op.Name).Context(ctx).Do()
		if err != nil {
			return false, err
		}
		return status.Done, nil
	})
	if err != nil {
		return Node{}, err
	}

	got, err := c.service.Projects.Locations.Nodes.Get(c.nodePath(spec.Name)).Context(ctx).Do()
	if err != nil {
		return Node{}, fmt.Errorf("fetching TPU node %q: %w", spec.Name, err)
	}
	return Node{Name: spec.Name, ServiceAccount: got.ServiceAccount}, nil
}

// DeleteNode deletes a TPU node and waits for the deletion to finish.
func (c *Client) DeleteNode(ctx context.Context, name string) error {
	op, err := c.service.Projects.Locations.Nodes.Delete(c.nodePath(name)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("deleting TPU node %q: %w", name, err)
	}

	return poll.Await(ctx, c.interval, 0, func(ctx context.Context) (bool, error) {
		logging.Info("Waiting for TPU %s to delete.", name)
		status, err := c.service.Projects.Locations.Operations.Get(op.Name).Context(ctx).Do()
		if err != nil {
			return false, err
		}
		return status.Done, nil
	})
}

func (c *Client) nodePath(name string) string {
	return fmt.Sprintf("projects/%s/locations/%s/nodes/%s", c.project, c.zone, name)
}
