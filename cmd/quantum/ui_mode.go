package main

import (
	"fmt"
	"strings"
)

// uiMode selects the scan progress view of analyze.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// readUIMode parses the merged --ui / config `ui` / QA_UI value.
func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on", "true":
		return uiModeOn, nil
	case "off", "false":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid ui mode %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether the scan runs under the progress view.
// --quiet always wins; auto follows whether stdout is a terminal.
func shouldUseTUI(mode uiMode, quiet, tty bool) bool {
	if quiet {
		return false
	}
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return tty
	}
}
