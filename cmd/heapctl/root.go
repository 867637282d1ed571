package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/heap"
)

const (
	envPrefix = "HEAPCTL"
	keyConfig = "config"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	cfgFile    string
	logLevel   string
	logFile    string
	allocKind  string
	heapSize   int
	split      bool
	coalesce   bool
	useMmap    bool
	abortOnOOM bool
)

// closeLog releases the log file opened by the last initLogger call.
var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise the heapkit bump and free-list allocators",
	Long: `heapctl runs the heapkit allocators over a fixed heap region.
It replays allocation traces, reports per-step results and usage
counters, and runs a small end-to-end demo under a chosen policy.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		if err := initLogger(); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.StringVar(&cfgFile, keyConfig, "", "Config file (default ./heapctl.yaml if present)")
	pf.StringVar(&logLevel, "log-level", "off", "Log level: off, debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")
	pf.StringVarP(&allocKind, "allocator", "a", kindFreeList, "Allocator: bump or freelist")
	pf.IntVar(&heapSize, "size", heap.HeapSize, "Heap region size in bytes")
	pf.BoolVar(&split, "split", true, "Free list: return unused head/tail of matched blocks")
	pf.BoolVar(&coalesce, "coalesce", true, "Free list: merge adjacent free blocks on free")
	pf.BoolVar(&useMmap, "mmap", false, "Back the region with an anonymous memory mapping")
	pf.BoolVar(&abortOnOOM, "abort-on-oom", false, "Exit on the first failed allocation")
}

func execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initializeConfig reads in the config file and HEAPCTL_* environment
// variables and applies them to every flag not set on the command line.
func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("heapctl")
		v.AddConfigPath(".")
	}

	// A missing default config file is fine; an unreadable or malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}

	// --log-level binds to HEAPCTL_LOG_LEVEL and so on.
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := bindFlags(cmd, v); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// bindFlags binds each cobra flag to its viper key (config file and
// environment variable).
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == keyConfig {
			return
		}

		// Environment variables can't have dashes in them.
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("binding env to flag %q: %w", f.Name, err))
				return
			}
		}

		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("setting flag %q value: %w", f.Name, err))
				return
			}
		}
	})

	return errors.Join(bindFlagErr...)
}

func initLogger() error {
	enabled, level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: enabled,
		Level:   level,
		JSON:    jsonOut,
		File:    logFile,
	})
	if err != nil {
		return err
	}
	closeLog = closeFn
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
