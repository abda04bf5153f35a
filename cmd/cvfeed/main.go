// Package main provides the cvfeed command: the candidate presentation
// server, the Telegram notifier bot and table maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/cvfeed/internal/config"
)

// settings collects environment, config file and flag values.
var settings = config.NewViper()

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "cvfeed",
	Short:         "Candidate CV feed",
	Long:          "cvfeed serves candidate profiles from the cv_profiles table and pushes new candidates to a Telegram chat.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	mustBind("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	mustBind("log.json", rootCmd.PersistentFlags().Lookup("json"))
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
