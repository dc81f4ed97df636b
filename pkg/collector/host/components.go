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

// Package host registers the built-in host collection components:
// raw file captures, command captures, and derived parsers over them.
package host

import (
	"context"
	"strings"

	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/errors"
	"github.com/NVIDIA/triage/pkg/execution"
	"github.com/NVIDIA/triage/pkg/provider"
	"github.com/NVIDIA/triage/pkg/version"
)

// PackageName is the name this package registers under in a manifest's
// packages list.
const PackageName = "collector/host"

func init() {
	collector.RegisterPackage(PackageName, Register)
}

// Register adds the host components to the registry.
func Register(reg *collector.Registry) error {
	components := []*collector.Component{
		fileComponent("host.file.cmdline", "/proc/cmdline"),
		fileComponent("host.file.os_release", "/etc/os-release"),
		fileComponent("host.file.meminfo", "/proc/meminfo"),
		fileComponent("host.file.modules", "/proc/modules"),
		fileComponent("host.file.syslog", "/var/log/syslog", "error", "warning", "fail"),

		commandComponent("host.cmd.hostname", "hostname -f"),
		commandComponent("host.cmd.uname", "uname -a"),
		commandComponent("host.cmd.ps", "ps aux"),
		commandComponent("host.cmd.ipcs", "ipcs -s"),

		derivedComponent("host.boot_params", []string{"host.file.cmdline"}, runBootParams),
		derivedComponent("host.os_release", []string{"host.file.os_release"}, runOSRelease),
		derivedComponent("host.ipcs_semaphores", []string{"host.cmd.ipcs"}, runIpcsSemaphores),
		derivedComponent("host.kernel_modules", []string{"host.file.modules"}, runKernelModules),
		derivedComponent("host.kernel_version", []string{"host.cmd.uname"}, runKernelVersion),
		derivedComponent("host.sysctl", nil, runSysctl),
	}

	for _, c := range components {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// fileComponent captures a file as a deferred provider. Content stays
// on disk until persistence decides whether it is small enough to
// serialize inline.
func fileComponent(name, path string, filters ...string) *collector.Component {
	return &collector.Component{
		Name:    name,
		Kind:    collector.KindFile,
		Source:  path,
		Filters: filters,
		Run: func(_ context.Context, host execution.Context, _ map[string]any) (any, error) {
			return provider.NewFileProvider(path, provider.WithReader(host.ReadFile)), nil
		},
	}
}

// commandComponent captures a command's stdout as text.
func commandComponent(name, cmd string) *collector.Component {
	return &collector.Component{
		Name:   name,
		Kind:   collector.KindCommand,
		Source: cmd,
		Run: func(ctx context.Context, host execution.Context, _ map[string]any) (any, error) {
			out, err := host.RunCommand(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return string(out), nil
		},
	}
}

func derivedComponent(name string, deps []string, run collector.RunFunc) *collector.Component {
	return &collector.Component{
		Name: name,
		Kind: collector.KindDerived,
		Deps: deps,
		Run:  run,
	}
}

// providerContent extracts the loaded content of a file dependency.
func providerContent(deps map[string]any, name string) (string, error) {
	fp, ok := deps[name].(*provider.FileProvider)
	if !ok || fp == nil {
		return "", errors.Newf(errors.ErrCodeComponentExecution, "dependency %s unavailable", name)
	}
	content, err := fp.Content()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeComponentExecution, "unable to read "+fp.Path(), err)
	}
	return string(content), nil
}

func commandOutput(deps map[string]any, name string) (string, error) {
	out, ok := deps[name].(string)
	if !ok {
		return "", errors.Newf(errors.ErrCodeComponentExecution, "dependency %s unavailable", name)
	}
	return out, nil
}

func runBootParams(_ context.Context, _ execution.Context, deps map[string]any) (any, error) {
	content, err := providerContent(deps, "host.file.cmdline")
	if err != nil {
		return nil, err
	}
	return ParseBootParams(content), nil
}

func runOSRelease(_ context.Context, _ execution.Context, deps map[string]any) (any, error) {
	content, err := providerContent(deps, "host.file.os_release")
	if err != nil {
		return nil, err
	}
	return ParseKeyValues(content), nil
}

func runKernelVersion(_ context.Context, _ execution.Context, deps map[string]any) (any, error) {
	out, err := commandOutput(deps, "host.cmd.uname")
	if err != nil {
		return nil, err
	}

	// uname -a: "Linux <node> <release> ...", the release is field 3.
	fields := strings.Fields(out)
	if len(fields) < 3 {
		return nil, errors.Newf(errors.ErrCodeComponentExecution, "unexpected uname output %q", strings.TrimSpace(out))
	}
	v, err := version.Parse(fields[2])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeComponentExecution, "unable to parse kernel release", err)
	}
	return v, nil
}

func runIpcsSemaphores(_ context.Context, _ execution.Context, deps map[string]any) (any, error) {
	out, err := commandOutput(deps, "host.cmd.ipcs")
	if err != nil {
		return nil, err
	}
	sems := ParseSemaphoreArrays(out)
	if len(sems) == 0 && strings.TrimSpace(out) == "" {
		return nil, errors.New(errors.ErrCodeComponentExecution, "ipcs produced no output")
	}
	return sems, nil
}
