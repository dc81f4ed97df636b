/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/serializer"
)

// componentInfo is the listing shape for one registered component.
type componentInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Kind    string   `json:"kind" yaml:"kind"`
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
	Deps    []string `json:"deps,omitempty" yaml:"deps,omitempty"`
	Enabled bool     `json:"enabled" yaml:"enabled"`
}

func componentsCmd() *cli.Command {
	return &cli.Command{
		Name:  "components",
		Usage: "List the components a manifest would run",
		Description: `Resolve the manifest's packages and enablement directives and list
every registered component with its effective enabled state.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Manifest file; empty uses the built-in default",
			},
			formatFlag,
			outputFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m, err := loadManifest(cmd.String("manifest"))
			if err != nil {
				return err
			}

			reg := collector.NewRegistry()
			reg.ApplyDefault(m.DefaultComponentEnabled)
			if err := collector.LoadPackages(reg, m.Packages); err != nil {
				return err
			}
			reg.ApplyOverrides(m.Overrides())

			infos := make([]componentInfo, 0, reg.Count())
			for _, c := range reg.Components() {
				infos = append(infos, componentInfo{
					Name:    c.Name,
					Kind:    string(c.Kind),
					Source:  c.Source,
					Deps:    c.Deps,
					Enabled: c.Enabled,
				})
			}

			w := serializer.NewFileWriterOrStdout(
				serializer.ParseFormat(cmd.String("format")),
				cmd.String("output"))
			defer w.Close()
			return w.Serialize(ctx, infos)
		},
	}
}

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"t"},
	Usage:   "Output format: " + strings.Join(serializer.SupportedFormats(), ", "),
	Value:   string(serializer.FormatTable),
}

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "Output file path (default: stdout)",
}
