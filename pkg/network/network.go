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

// Package network reserves and releases the internal address ranges a TPU
// node peers through. Reservations are global Compute Engine addresses;
// both directions go through asynchronous operations polled at a fixed
// one-second interval.
package network

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/compute/v1"

	"tpu-toolkit/pkg/faults"
	"tpu-toolkit/pkg/logging"
	"tpu-toolkit/pkg/poll"
)

const pollInterval = 1 * time.Second

// Reservation is a reserved address range.
type Reservation struct {
	Address      string
	PrefixLength int64
}

// CIDR renders the reservation in the <address>/<prefixLength> form the
// TPU API expects.
func (r Reservation) CIDR() string {
	return fmt.Sprintf("%s/%d", r.Address, r.PrefixLength)
}

// Client reserves and releases global address ranges in one project.
type Client struct {
	service  *compute.Service
	project  string
	interval time.Duration
}

// NewClient wraps an initialized Compute Engine service.
func NewClient(service *compute.Service, project string) *Client {
	return &Client{service: service, project: project, interval: pollInterval}
}

// ReserveCIDR reserves an address range named name on the given VPC
// network. The range is not strictly required by the TPU API, but
// reserving it is how an open CIDR block of the right size gets identified
// automatically. When explicitAddress is set, that exact address is
// requested instead of letting the provider pick one from the free pool.
func (c *Client) ReserveCIDR(ctx context.Context, vpc, name string, prefixLength int, explicitAddress string) (Reservation, error) {
	addr := &compute.Address{
		Name:         name,
		Network:      fmt.Sprintf("/global/networks/%s", vpc),
		Purpose:      "VPC_PEERING",
		AddressType:  "INTERNAL",
		PrefixLength: int64(prefixLength),
	}
	if explicitAddress != "" {
		addr.Address = explicitAddress
	}

	op, err := c.service.GlobalAddresses.Insert(c.project, addr).Context(ctx).Do()
	if err != nil {
		return Reservation{}, faults.Wrap(faults.Allocation, err, "reserving address range %q", name)
	}

	err = poll.Await(ctx, c.interval, 0, func(ctx context.Context) (bool, error) {
		logging.Info("Waiting for address block to allocate.")
		status, err := c.service.GlobalOperations.Get(c.project, op.Name).Context(ctx).Do()
		if err != nil {
			return false, err
		}
		return reservationDone(status, name)
	})
	if err != nil {
		return Reservation{}, err
	}

	got, err := c.service.GlobalAddresses.Get(c.project, name).Fields("address", "prefixLength").Context(ctx).Do()
	if err != nil {
		return Reservation{}, fmt.Errorf("fetching reserved range %q: %w", name, err)
	}
	return Reservation{Address: got.Address, PrefixLength: got.PrefixLength}, nil
}

// ReleaseCIDR releases a reserved address range that no TPU node requires
// anymore.
func (c *Client) ReleaseCIDR(ctx context.Context, name string) error {
	op, err := c.service.GlobalAddresses.Delete(c.project, name).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("releasing address range %q: %w", name, err)
	}

	return poll.Await(ctx, c.interval, 0, func(ctx context.Context) (bool, error) {
		logging.Info("Waiting for address block to release.")
		status, err := c.service.GlobalOperations.Get(c.project, op.Name).Context(ctx).Do()
		if err != nil {
			return false, err
		}
		return status.Status == "DONE", nil
	})
}

// reservationDone reports whether the reservation operation reached its
// terminal status. A failed operation surfaces as an allocation fault
// carrying the remote error payload.
func reservationDone(status *compute.Operation, name string) (bool, error) {
	if status.Error != nil && len(status.Error.Errors) > 0 {
		return false, faults.New(faults.Allocation, "address reservation %q failed: %s", name, operationErrors(status.Error))
	}
	return status.Status == "DONE", nil
}

func operationErrors(opErr *compute.OperationError) string {
	msgs := make([]string, 0, len(opErr.Errors))
	for _, e := range opErr.Errors {
		if e.Code != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Code, e.Message))
		} else {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}
