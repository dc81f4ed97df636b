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

package execution

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/triage/pkg/defaults"
)

// ClassHostContext is the manifest class name for local host execution.
const ClassHostContext = "HostContext"

// Commands run with a minimal fixed PATH so collection output does not
// depend on the invoking user's environment.
var safeEnv = []string{
	"PATH=" + strings.Join([]string{"/bin", "/usr/bin", "/sbin", "/usr/sbin"}, string(os.PathListSeparator)),
	"LC_ALL=C",
}

// HostContext executes commands and reads files on the local host.
// A rate limiter bounds subprocess spawn rate so a large manifest cannot
// overwhelm a loaded node.
type HostContext struct {
	// Timeout is the default per-command timeout. Zero disables it.
	Timeout time.Duration

	limiter *rate.Limiter
}

// HostOption configures a HostContext.
type HostOption func(*HostContext)

// WithTimeout sets the default command timeout.
func WithTimeout(d time.Duration) HostOption {
	return func(h *HostContext) {
		h.Timeout = d
	}
}

// WithCommandRate limits command spawns to n per second.
// Zero or negative disables limiting.
func WithCommandRate(n float64) HostOption {
	return func(h *HostContext) {
		if n > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// NewHostContext creates a HostContext with the provided options.
func NewHostContext(opts ...HostOption) *HostContext {
	h := &HostContext{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func init() {
	RegisterClass(ClassHostContext, func(args map[string]any) (Context, error) {
		opts := make([]HostOption, 0, 2)
		if v, ok := args["timeout"]; ok {
			secs, err := toSeconds(v)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout arg: %w", err)
			}
			opts = append(opts, WithTimeout(secs))
		} else {
			opts = append(opts, WithTimeout(defaults.CommandTimeout))
		}
		if v, ok := args["commands_per_second"]; ok {
			n, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("invalid commands_per_second arg: %w", err)
			}
			opts = append(opts, WithCommandRate(n))
		} else {
			opts = append(opts, WithCommandRate(defaults.CommandsPerSecond))
		}
		return NewHostContext(opts...), nil
	})
}

// RunCommand executes the given command line with a minimal environment
// and returns its standard output. Stderr is logged, not captured.
func (h *HostContext) RunCommand(ctx context.Context, command string) ([]byte, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Env = safeEnv

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stderr.Len() > 0 {
		slog.Warn("command wrote to stderr",
			slog.String("command", fields[0]),
			slog.String("stderr", strings.TrimSpace(stderr.String())))
	}
	if err != nil {
		// Surface the context error so deadline expiry is distinguishable
		// from a non-zero exit.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("command %q failed: %w", command, err)
	}

	return stdout.Bytes(), nil
}

// ReadFile reads a local file.
func (h *HostContext) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// CommandTimeout returns the default command timeout.
func (h *HostContext) CommandTimeout() time.Duration {
	return h.Timeout
}

func toSeconds(v any) (time.Duration, error) {
	switch n := v.(type) {
	case int:
		return time.Duration(n) * time.Second, nil
	case int64:
		return time.Duration(n) * time.Second, nil
	case float64:
		return time.Duration(n * float64(time.Second)), nil
	case string:
		return time.ParseDuration(n)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
