package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/marquee/internal/config"
	"github.com/zjrosen/marquee/internal/flags"
)

var noCatalogAnnotations = map[string]string{annotationNoCatalog: "true"}

func newConfigCmds(app *session, opts *rootOptions) []*cobra.Command {
	return []*cobra.Command{
		newConfigInitCmd(opts),
		newConfigFlagCmd(app),
		newConfigBackendCmd(app),
	}
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "config:init",
		Short:       "Write a commented default config file",
		Args:        cobra.NoArgs,
		Annotations: noCatalogAnnotations,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.cfgFile
			if path == "" {
				path = localConfigPath
			}
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigFlagCmd(app *session) *cobra.Command {
	return &cobra.Command{
		Use:   "config:flag NAME [true|false]",
		Short: "Show or set a feature flag",
		Long: `Show or set a feature flag in the config file.

Known flags:
  strict-references  refuse to delete a person still referenced by a movie
  show-diff          print a field diff after movie:update`,
		Args:        cobra.RangeArgs(1, 2),
		Annotations: noCatalogAnnotations,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !slices.Contains(flags.Known(), name) {
				return fmt.Errorf("unknown flag %q (known: %v)", name, flags.Known())
			}
			if len(args) == 1 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", name, app.flags.Enabled(name))
				return err
			}

			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("flag value %q: %w", args[1], err)
			}
			all := app.flags.All()
			all[name] = value
			if err := config.SaveFlags(app.configPath, all); err != nil {
				return fmt.Errorf("saving flags: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %t (saved to %s)\n", name, value, app.configPath)
			return err
		},
	}
}

func newConfigBackendCmd(app *session) *cobra.Command {
	return &cobra.Command{
		Use:         "config:backend sqlite|memory",
		Short:       "Select the storage backend",
		Args:        cobra.ExactArgs(1),
		ValidArgs:   []string{config.BackendSQLite, config.BackendMemory},
		Annotations: noCatalogAnnotations,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveStorageBackend(app.configPath, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "storage.backend: %s (saved to %s)\n", args[0], app.configPath)
			return err
		},
	}
}
