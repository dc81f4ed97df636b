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

// Package archive packs a completed collection directory into a
// compressed tarball.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/triage/pkg/errors"
)

// Create packs the directory at dir into dir+".tar.gz" and removes the
// directory on success. Entries are stored relative to dir's parent so
// extraction reproduces the top-level directory name. On failure the
// partial archive is removed and the directory is left in place for
// inspection.
func Create(ctx context.Context, dir string) (string, error) {
	target := dir + ".tar.gz"
	if err := write(ctx, dir, target); err != nil {
		if rmErr := os.Remove(target); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("unable to remove partial archive",
				slog.String("path", target),
				slog.String("error", rmErr.Error()))
		}
		return "", errors.Wrap(errors.ErrCodeArchive, "unable to create archive", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("archive created but working directory not removed",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
	}
	return target, nil
}

func write(ctx context.Context, dir, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	gzw := gzip.NewWriter(out)
	tw := tar.NewWriter(gzw)

	parent := filepath.Dir(dir)
	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if walkErr != nil {
		return walkErr
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gzw.Close(); err != nil {
		return err
	}
	return out.Close()
}

// Extract unpacks a tarball created by Create into dest. It refuses
// entries that would escape dest.
func Extract(path, dest string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchive, "unable to open archive", err)
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchive, "archive is not gzip compressed", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeArchive, "unable to read archive entry", err)
		}

		name := filepath.FromSlash(header.Name)
		if strings.Contains(name, "..") {
			return errors.Newf(errors.ErrCodeArchive, "archive entry %s escapes destination", header.Name)
		}
		target := filepath.Join(dest, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return errors.Wrap(errors.ErrCodeArchive, "unable to create directory", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return errors.Wrap(errors.ErrCodeArchive, "unable to create directory", err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0o777)
			if err != nil {
				return errors.Wrap(errors.ErrCodeArchive, "unable to create file", err)
			}
			if _, err := io.Copy(out, tr); err != nil { //nolint:gosec // local trusted archives
				out.Close()
				return errors.Wrap(errors.ErrCodeArchive, "unable to extract file", err)
			}
			if err := out.Close(); err != nil {
				return errors.Wrap(errors.ErrCodeArchive, "unable to close file", err)
			}
		}
	}
}
