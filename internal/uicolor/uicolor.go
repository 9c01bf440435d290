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

// Package uicolor is the CLI's terminal-output helper: severity-colored
// diagnostic lines, honoring --no-color, NO_COLOR, and non-TTY stdout.
package uicolor

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// InitColors disables color globally when disabled is true, or when
// stdout is not a terminal, matching the teacher CLI's --no-color /
// NO_COLOR precedent.
func InitColors(disabled bool) {
	if disabled || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	hintColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.Faint)
)

// Severity is the minimal interface uicolor needs from a diagnostic's
// severity to pick a color — satisfied by lintengine.Severity's String().
type Severity interface {
	String() string
}

// ColorFor returns the color.Color for a severity string ("error",
// "warning", "info", "hint"), defaulting to no styling for anything else.
func ColorFor(severity string) *color.Color {
	switch severity {
	case "error":
		return errorColor
	case "warning":
		return warningColor
	case "info":
		return infoColor
	case "hint":
		return hintColor
	default:
		return color.New()
	}
}

// FprintDiagnosticLine writes one human-readable diagnostic line to w,
// colored by severity: "path:start-end severity rule-id message".
func FprintDiagnosticLine(w io.Writer, path string, start, end int, severity, ruleID, message string) {
	c := ColorFor(severity)
	fmt.Fprintf(w, "%s ", dimColor.Sprintf("%s:%d-%d", path, start, end))
	c.Fprintf(w, "%s", severity)
	fmt.Fprintf(w, " %s %s\n", dimColor.Sprint(ruleID), message)
}
