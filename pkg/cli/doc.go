// Package cli implements the command-line interface for the triage tool.
//
// # Overview
//
// The triage CLI collects diagnostic data from a host according to a
// declarative manifest and packs the results into a portable archive.
// It is designed for operators gathering support data from machines
// they administer.
//
// # Commands
//
// collect - Run a collection:
//
//	triage collect [--manifest FILE] [--output DIR] [--workers N] [--no-archive]
//
// Runs every enabled component, persists one document per component,
// and produces a tar.gz archive. The archive path is printed on success.
//
// components - List components:
//
//	triage components [--manifest FILE] [--format table|json|yaml]
//
// Resolves the manifest and lists every registered component with its
// effective enabled state, source, and dependencies.
//
// manifest - Show the effective manifest:
//
//	triage manifest [--manifest FILE] [--format yaml|json]
//
// Prints the manifest a run would use after validation and defaulting.
//
// # Environment Variables
//
//	LOG_LEVEL        Set logging verbosity (debug, info, warn, error)
//	TRIAGE_MANIFEST  Default manifest file for collect
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid manifest, setup failure, archive failure)
package cli
