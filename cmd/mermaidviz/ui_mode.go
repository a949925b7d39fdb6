package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// useTUI resolves --ui; --quiet always disables the live view.
func useTUI(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return false, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(value)
	if err != nil {
		return false, err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return false, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if quiet {
		return false, nil
	}
	return shouldUseTUI(mode), nil
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
