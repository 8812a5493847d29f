package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON emits v as indented JSON on the command's stdout. Every command
// with a --json flag routes its machine-readable output through here so the
// payloads stay consistent with the daemon API types.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
