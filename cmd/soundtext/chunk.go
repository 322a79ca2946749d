package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/soundtext/soundtext/runtime/chunker"
)

func newChunkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chunk [text]",
		Short: "Print the chunks text would be divided into, without rendering",
		RunE:  runChunk,
	}
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	chunks, err := chunker.DivideIntoChunks(text, cfg.Spec.Chunking.MaxLength)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, c := range chunks {
		fmt.Fprintf(out, "%d\t%d\t%q\n", i, utf8.RuneCountInString(c), c)
	}
	return nil
}
