/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/triage/pkg/serializer"
)

func manifestCmd() *cli.Command {
	return &cli.Command{
		Name:  "manifest",
		Usage: "Print the effective collection manifest",
		Description: `Print the manifest a collection run would use, after validation and
defaulting. Without --manifest the built-in default is shown, which is a
useful starting point for a custom manifest.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Manifest file; empty uses the built-in default",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "Output format: yaml, json",
				Value:   string(serializer.FormatYAML),
			},
			outputFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m, err := loadManifest(cmd.String("manifest"))
			if err != nil {
				return err
			}

			w := serializer.NewFileWriterOrStdout(
				serializer.ParseFormat(cmd.String("format")),
				cmd.String("output"))
			defer w.Close()
			return w.Serialize(ctx, m)
		},
	}
}
