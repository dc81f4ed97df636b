/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/triage/pkg/collect"
	"github.com/NVIDIA/triage/pkg/manifest"
)

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Run a collection and produce an archive",
		Description: `Run every enabled component from the manifest, persist their results
as documents, and pack everything into a compressed archive.

Without --manifest the built-in default manifest is used, which captures
a conservative set of host facts. The archive path is printed on success.

# Examples

Collect with the defaults:
  triage collect

Collect with a custom manifest into /var/tmp:
  triage collect --manifest collection.yaml --output /var/tmp

Keep the run directory instead of archiving:
  triage collect --no-archive`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Manifest file (YAML, JSON, or TOML); empty uses the built-in default",
				Sources: cli.EnvVars("TRIAGE_MANIFEST"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the archive is created in",
				Value:   ".",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Run independent components in parallel with this many workers",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "no-archive",
				Usage: "Leave the run directory in place instead of archiving it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m, err := loadManifest(cmd.String("manifest"))
			if err != nil {
				return err
			}

			path, err := collect.Run(ctx, m, collect.Options{
				OutPath: cmd.String("output"),
				Workers: int(cmd.Int("workers")),
				Archive: !cmd.Bool("no-archive"),
				Version: version,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Writer, path)
			return nil
		},
	}
}

func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return manifest.Default(), nil
	}
	return manifest.LoadFile(path)
}
