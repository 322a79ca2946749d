package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// readText returns the joined arguments, or all of stdin when there are none.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read text from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
