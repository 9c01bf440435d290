// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the dxcheck CLI: a fused lint engine with an
// adaptive parallel scheduler and a content-addressed tool cache.
//
// Usage:
//
//	dxcheck check [path]          Lint a workspace, default path "."
//	dxcheck cache <subcommand>    Inspect or manage the tool cache
//	dxcheck init                  Write a default .dx/config.yaml
//	dxcheck config                Print the effective configuration
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/dxtools/dxcheck/internal/uicolor"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the flags that apply to every subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output")
	)

	flag.SetInterspersed(false)
	flag.Usage = printUsage

	flag.Parse()

	if *showVersion {
		fmt.Printf("dxcheck version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintln(os.Stderr, "Error: cannot use --quiet and --verbose together")
		os.Exit(2)
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, Verbose: *verbose, Quiet: *quiet}
	uicolor.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	command, cmdArgs := args[0], args[1:]

	var exitCode int
	switch command {
	case "check":
		exitCode = runCheck(cmdArgs, globals)
	case "cache":
		exitCode = runCache(cmdArgs, globals)
	case "init":
		exitCode = runInit(cmdArgs, globals)
	case "config":
		exitCode = runConfig(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		exitCode = 2
	}
	os.Exit(exitCode)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `dxcheck - fused lint engine for JavaScript and TypeScript

Usage:
  dxcheck <command> [options]

Commands:
  check [path]     Lint a workspace (default path: .)
  cache <action>   warm-start | clear | sync | pull | stats
  init             Write a default .dx/config.yaml
  config           Print the effective configuration

check Options:
  --score                        Print a 500-point project score alongside diagnostics
  --score-detailed               Break the score down per file (implies --score)
  --threshold N                  Fail the run if the total score drops below N
  --threshold-category cat=min   Fail the run if a category score drops below min (repeatable)
  --metrics-addr addr            HTTP listen address for Prometheus metrics

Global Options:
  --json          Output in JSON format
  --no-color      Disable color output (respects NO_COLOR env var)
  -v, --verbose   Increase verbosity
  -q, --quiet     Suppress non-essential output
  -V, --version   Show version and exit

Exit codes:
  0  clean run, no Error-severity diagnostics (and no threshold failures)
  1  diagnostics with severity Error are present, or a score threshold failed
  2  EngineFailure or catastrophic I/O

Environment Variables (optional remote cache replication):
  R2_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT
`)
}
