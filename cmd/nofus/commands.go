package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/nofus"
	"github.com/lixenwraith/nofus/logger"
)

func getCmd(opts *options) *cobra.Command {
	var fallback string
	var hasFallback bool

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the last value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(opts)
			if err != nil {
				return err
			}
			value, ok := cfg.Get(args[0])
			if !ok {
				if !hasFallback {
					return fmt.Errorf("key %q not found", args[0])
				}
				value = fallback
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	cmd.Flags().StringVar(&fallback, "or", "", "Value printed when the key is missing")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasFallback = cmd.Flags().Changed("or")
	}
	return cmd
}

func arrayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "array KEY",
		Short: "Print every value of a key, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(opts)
			if err != nil {
				return err
			}
			for _, value := range cfg.Strings(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	}
}

func scopesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scopes [PREFIX]",
		Short: "List the names directly below a scope",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(opts)
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			for _, name := range cfg.EnumerateScope(prefix) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func keysCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [PREFIX]",
		Short: "List every key, or the keys below a scope",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(opts)
			if err != nil {
				return err
			}
			keys := cfg.Keys()
			if len(args) == 1 {
				view := cfg.Scope(args[0])
				if view == nil {
					return fmt.Errorf("scope %q not found", args[0])
				}
				keys = view.Keys()
			}
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report every malformed line and exit non-zero if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(opts)
			if err != nil {
				return err
			}
			parseErrors := cfg.Errors()
			for _, pe := range parseErrors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d: %s\n", cfg.Path(), pe.Line, pe.Reason)
			}
			if len(parseErrors) > 0 {
				return errCheckFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d keys, ok\n", cfg.Path(), len(cfg.Keys()))
			return nil
		},
	}
}

func dumpCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every key and value in conf, toml, json or yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(opts)
			if err != nil {
				return err
			}
			return cfg.Dump(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", nofus.FormatConf, "Output format (conf, toml, json, yaml)")
	return cmd
}

func watchCmd(opts *options) *cobra.Command {
	watchOpts := nofus.DefaultWatchOptions()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the keys that change each time the file is rewritten",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			changes := cfg.WatchWithOptions(watchOpts)
			defer cfg.StopAutoUpdate()
			logger.Default().Notice("Watching config file", "path", cfg.Path())

			for {
				select {
				case <-ctx.Done():
					return nil
				case key, ok := <-changes:
					if !ok {
						return fmt.Errorf("watch on %q ended", cfg.Path())
					}
					if value, found := cfg.Get(key); found {
						fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&watchOpts.Debounce, "debounce", nofus.DefaultDebounce, "Wait for writes to settle before reloading")
	return cmd
}
