// Command nofus queries and checks NOFUS configuration files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/nofus"
	"github.com/lixenwraith/nofus/logger"
)

const appName = "nofus"

// Version is set at build time.
var Version = "dev"

// errCheckFailed makes the process exit non-zero without printing a second message.
var errCheckFailed = errors.New("config file has errors")

type options struct {
	file         string
	logLevel     string
	logFile      string
	defaultFiles []string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Query NOFUS configuration files",
		Long: `nofus reads line-oriented configuration files: key = value
assignments, [scope] sections, dotted names, quoted values, multi-valued
keys and boolean flags.

Without --file the file is discovered from $NOFUS_CONFIG, the current
directory and the XDG config directories.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			return logger.Initialize(opts.logFile, level)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Disable()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Config file path")
	cmd.PersistentFlags().StringVar(&opts.file, "config", "", "Alias of --file")
	_ = cmd.PersistentFlags().MarkHidden("config")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warning", "Log level (trace, debug, info, notice, warning, error, critical)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Append logs to this file instead of stderr")
	cmd.PersistentFlags().StringArrayVarP(&opts.defaultFiles, "default", "d", nil, "Defaults file (toml, json or yaml); repeatable")

	cmd.AddCommand(
		getCmd(opts),
		arrayCmd(opts),
		scopesCmd(opts),
		keysCmd(opts),
		checkCmd(opts),
		dumpCmd(opts),
		watchCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// load builds the ConfigFile for a command. Malformed lines are logged and
// the remaining keys are still served.
func load(opts *options) (*nofus.ConfigFile, error) {
	b := nofus.NewBuilder().WithLogger(logger.Default().Logger)
	if opts.file != "" {
		b.WithFile(opts.file)
	} else {
		b.WithFileDiscovery(discoveryOptions())
	}
	for _, path := range opts.defaultFiles {
		b.WithDefaultsFile(path)
	}

	cfg, err := b.Build()
	if cfg == nil {
		return nil, err
	}
	for _, pe := range nofus.ParseErrors(err) {
		logger.Default().Warning("Skipped malformed line", "path", cfg.Path(), "line", pe.Line, "reason", pe.Reason)
	}
	if errors.Is(err, nofus.ErrNoFileGiven) && len(opts.defaultFiles) == 0 {
		return nil, fmt.Errorf("%w: use --file or set %s", err, discoveryOptions().EnvVar)
	}
	return cfg, nil
}

// discoveryOptions searches the environment and config directories only;
// cobra has already consumed --file and --config.
func discoveryOptions() nofus.FileDiscoveryOptions {
	opts := nofus.DefaultDiscoveryOptions(appName)
	opts.CLIFlag = ""
	return opts
}
