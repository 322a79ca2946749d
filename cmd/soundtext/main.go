package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/soundtext/soundtext/runtime/logger"
	"github.com/soundtext/soundtext/runtime/version"
)

// newRootCmd builds the command tree. Each call returns independent flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "soundtext",
		Short:         "Turn text into spoken audio files",
		Version:       version.GetVersion(),
		SilenceUsage:  true,  // Don't print usage on error
		SilenceErrors: false, // Do print errors
		Long: `soundtext divides text into chunks the sounds service accepts, renders
every chunk concurrently and prints the URL of each audio file in order.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadDotEnv()
			if cmd.Flags().Changed("verbose") {
				verbose, err := cmd.Flags().GetBool("verbose")
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error getting verbose flag: %v\n", err)
					return
				}
				logger.SetVerbose(verbose)
			}
			version.LogStartup()
		},
	}
	rootCmd.SetVersionTemplate(version.GetVersionInfo() + "\n")

	addSettingsFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(newSpeakCmd(), newChunkCmd(), newVersionCmd())
	return rootCmd
}

// loadDotEnv loads the first .env file found. Variables already set win.
func loadDotEnv() {
	envPaths := []string{
		".env",
		filepath.Join(os.Getenv("HOME"), ".soundtext.env"),
	}

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}
