// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sysd registers components that capture systemd unit state
// over the D-Bus API.
package sysd

import (
	"context"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/defaults"
	"github.com/NVIDIA/triage/pkg/errors"
	"github.com/NVIDIA/triage/pkg/execution"
)

// PackageName is the name this package registers under in a manifest's
// packages list.
const PackageName = "collector/sysd"

// defaultServices are captured when the manifest does not override the
// services metadata.
var defaultServices = []string{"containerd.service", "docker.service"}

// newConn is swapped in tests.
var newConn = func(ctx context.Context) (systemdConn, error) {
	return dbus.NewSystemdConnectionContext(ctx)
}

type systemdConn interface {
	GetAllPropertiesContext(ctx context.Context, unit string) (map[string]any, error)
	Close()
}

func init() {
	collector.RegisterPackage(PackageName, Register)
}

// Register adds the systemd components to the registry. The services
// metadata can be overridden per run through the manifest's configs.
func Register(reg *collector.Registry) error {
	c := &collector.Component{
		Name: "sysd.units",
		Kind: collector.KindDerived,
		Metadata: map[string]any{
			"services": defaultServices,
		},
	}
	c.Run = runUnitsFor(c)
	return reg.Register(c)
}

// UnitState is the captured state of one systemd unit.
type UnitState struct {
	Unit       string         `json:"unit" yaml:"unit"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// runUnitsFor builds a run function honoring the component's metadata,
// so manifests can override the captured services.
func runUnitsFor(c *collector.Component) collector.RunFunc {
	return func(ctx context.Context, _ execution.Context, _ map[string]any) (any, error) {
		return collectUnits(ctx, servicesFromMetadata(c.Metadata))
	}
}

func collectUnits(ctx context.Context, services []string) ([]UnitState, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.SystemdTimeout)
	defer cancel()

	conn, err := newConn(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeComponentExecution, "unable to connect to systemd", err)
	}
	defer conn.Close()

	out := make([]UnitState, 0, len(services))
	for _, service := range services {
		props, err := conn.GetAllPropertiesContext(ctx, service)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeComponentExecution, "unable to read unit "+service, err)
		}
		out = append(out, UnitState{
			Unit:       service,
			Properties: filterProperties(props),
		})
	}
	return out, nil
}

// servicesFromMetadata reads the services list from component metadata,
// accepting both string slices and YAML-decoded any slices.
func servicesFromMetadata(md map[string]any) []string {
	raw, ok := md["services"]
	if !ok {
		return defaultServices
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultServices
}

// filterProperties drops noisy transient values so captured unit state
// is stable across invocations.
func filterProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if isTransientProperty(k) {
			continue
		}
		out[k] = v
	}
	return out
}

func isTransientProperty(name string) bool {
	for _, prefix := range []string{"Exec", "CPUUsage", "Memory", "IO", "IP"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return strings.HasSuffix(name, "Timestamp") || strings.HasSuffix(name, "TimestampMonotonic")
}
