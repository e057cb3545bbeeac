// Package cmd provides the command-line interface for mystudy with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --port, etc.) - highest priority
//	2. MYSTUDY_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (MYSTUDY_SERVER_PORT, etc.)
//	4. Configuration files (.mystudy.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mystudy",
	Short: "A study companion for a Markdown web-development curriculum",
	Long: `Mystudy manages a self-study curriculum of Markdown lessons covering
HTML, CSS, TypeScript, and React, with a practice workspace for running the
TypeScript examples.

Key Features:
  • Lesson discovery across curriculum tracks
  • TypeScript practice workspace scaffolding
  • Lesson preview server with live reload
  • Frontmatter and link validation
  • Code snippet extraction
  • Per-lesson progress tracking

Quick Start:
  mystudy init                    Initialize a new curriculum
  mystudy scaffold                Create the TypeScript practice workspace
  mystudy serve                   Start the lesson preview server
  mystudy list                    List all lessons
  mystudy validate                Check lessons for problems

Command Aliases (for faster typing):
  init (i), serve (s), list (l), validate (v), scaffold (sc)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscores in flag names, e.g. --no_open for --no-open
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .mystudy.yml, can also use MYSTUDY_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system with support for multiple
// config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. MYSTUDY_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .mystudy.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MYSTUDY_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mystudy")
	}

	// Environment variable binding with MYSTUDY_ prefix,
	// e.g. MYSTUDY_SERVER_PORT, MYSTUDY_DEVELOPMENT_HOT_RELOAD
	viper.SetEnvPrefix("MYSTUDY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files fall back to defaults
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
