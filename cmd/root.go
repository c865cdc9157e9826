// Package cmd wires the marquee command line: configuration loading, the
// slot store backend, and one cobra command per catalog operation.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/marquee/internal/catalog/application"
	"github.com/zjrosen/marquee/internal/catalog/storage"
	"github.com/zjrosen/marquee/internal/config"
	"github.com/zjrosen/marquee/internal/domain/violation"
	"github.com/zjrosen/marquee/internal/flags"
	"github.com/zjrosen/marquee/internal/infrastructure/cached"
	"github.com/zjrosen/marquee/internal/infrastructure/memory"
	"github.com/zjrosen/marquee/internal/infrastructure/sqlite"
	"github.com/zjrosen/marquee/internal/log"
	"github.com/zjrosen/marquee/internal/presentation"
	"github.com/zjrosen/marquee/internal/tracing"
)

const localConfigPath = ".marquee/config.yaml"

// annotationNoCatalog marks commands that run without opening the store.
const annotationNoCatalog = "marquee/no-catalog"

var version = "dev"

type rootOptions struct {
	cfgFile string
	debug   bool
	format  string
}

// session is the state shared by one command invocation.
type session struct {
	cfg        config.Config
	configPath string
	flags      *flags.Registry
	out        *presentation.Formatter
	errOut     *presentation.Formatter

	catalog *application.Catalog
	loadErr error      // set when a slot could not be read; saving is refused
	db      *sqlite.DB // nil unless the sqlite backend is open

	closers []func() error
}

func newRootCmd(app *session) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "marquee",
		Short: "Manage a catalog of movies and the people who make them",
		Long: `Marquee keeps a small catalog of movies and persons (directors and actors).

Every record is validated on entry: ids, titles, ratings, genres, release
dates and person references. Data is stored in a local SQLite database by
default, or kept in memory for the duration of one command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.open(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "",
		"config file (default: .marquee/config.yaml, then ~/.config/marquee/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false,
		"write a debug log (also enabled by MARQUEE_DEBUG)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", string(presentation.FormatTable),
		"output format: table or json")

	root.AddCommand(newPersonCmds(app)...)
	root.AddCommand(newMovieCmds(app)...)
	root.AddCommand(newEnumCmd(app))
	root.AddCommand(newDataCmds(app)...)
	root.AddCommand(newConfigCmds(app, opts)...)
	return root
}

// execute runs one invocation of the command tree and releases everything
// the invocation opened, whether or not the command failed.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	app := &session{}
	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, app.close())
}

// Execute runs the root command
func Execute() error {
	err := execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

func (s *session) open(cmd *cobra.Command, opts *rootOptions) error {
	noCatalog := cmd.Annotations[annotationNoCatalog] != ""
	cfg, configPath, err := loadConfig(opts.cfgFile, noCatalog)
	if err != nil {
		return err
	}
	s.cfg, s.configPath = cfg, configPath

	if err := s.initLogging(opts.debug); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := presentation.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	s.out = presentation.NewFormatter(cmd.OutOrStdout()).WithFormat(format)
	s.errOut = presentation.NewFormatter(cmd.ErrOrStderr())
	s.flags = flags.NewWithDefaults(cfg.Flags)

	log.Debug(log.CatCLI, "Command starting", "command", cmd.Name(), "config", configPath)
	if noCatalog {
		return nil
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	s.closers = append(s.closers, func() error { return provider.Shutdown(context.Background()) })

	store, db, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	s.db = db
	if c, ok := store.(io.Closer); ok {
		s.closers = append(s.closers, c.Close)
	}

	s.catalog = application.NewCatalog(store, s.flags)
	if err := s.catalog.Load(cmd.Context()); err != nil {
		s.loadErr = err
		s.errOut.Alert(fmt.Errorf("catalog only partly loaded: %w", err))
	}
	return nil
}

func (s *session) initLogging(debug bool) error {
	if !debug && os.Getenv("MARQUEE_DEBUG") == "" {
		return nil
	}
	logPath := os.Getenv("MARQUEE_LOG")
	if logPath == "" {
		logPath = s.cfg.Log.Path
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	s.closers = append(s.closers, func() error { cleanup(); return nil })

	// Validated below with the rest of the config; an invalid level keeps debug.
	if level, err := log.ParseLevel(s.cfg.Log.Level); err == nil {
		log.SetMinLevel(level)
	}
	log.Info(log.CatConfig, "Marquee starting", "version", version, "logPath", logPath)
	return nil
}

// close releases resources in the reverse order they were acquired.
func (s *session) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// save persists both registries after a mutating command.
func (s *session) save(ctx context.Context) error {
	if s.loadErr != nil {
		return fmt.Errorf("not saving over unreadable data (reset it with data:clear or data:seed): %w", s.loadErr)
	}
	return s.catalog.Save(ctx)
}

// reload reads the catalog again straight from the database, bypassing any
// read cache.
func (s *session) reload(ctx context.Context) error {
	catalog := application.NewCatalog(s.db.SlotStore(), s.flags)
	if err := catalog.Load(ctx); err != nil {
		return err
	}
	s.catalog = catalog
	return nil
}

// report prints validation and lookup failures as alerts. Those are not
// command failures; any other error is returned.
func (s *session) report(err error) error {
	if err == nil {
		return nil
	}
	_, isViolation := violation.KindOf(err)
	if isViolation || errors.Is(err, storage.ErrNotFound) || errors.Is(err, application.ErrPersonReferenced) {
		s.errOut.Alert(err)
		return nil
	}
	return err
}

func openStore(sc config.StorageConfig) (storage.SlotStore, *sqlite.DB, error) {
	var (
		store storage.SlotStore
		db    *sqlite.DB
	)
	switch sc.Backend {
	case config.BackendMemory:
		store = memory.NewSlotStore()
	default:
		var err error
		db, err = sqlite.NewDB(sc.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		store = db.SlotStore()
	}

	if sc.Cache {
		store = cached.NewSlotStore(store, sc.CacheTTL)
	}
	log.Debug(log.CatConfig, "Slot store opened", "backend", sc.Backend, "cache", sc.Cache)
	return store, db, nil
}

// loadConfig reads the config file and returns it with the path it came from.
//
// Config lookup order:
//  1. --config
//  2. .marquee/config.yaml (current directory)
//  3. ~/.config/marquee/config.yaml (user config)
//
// When none exists a commented default is written to .marquee/config.yaml. A
// missing --config file is an error unless allowMissing is set, in which case
// the defaults are returned with that path.
func loadConfig(cfgFile string, allowMissing bool) (config.Config, string, error) {
	v := viper.New()
	defaults := config.Defaults()
	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.cache", defaults.Storage.Cache)
	v.SetDefault("storage.cache_ttl", defaults.Storage.CacheTTL)
	v.SetDefault("log.path", defaults.Log.Path)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", config.DefaultTracesFilePath())
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	// MARQUEE_STORAGE_BACKEND=memory and friends override the file.
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case fileExists(localConfigPath):
		v.SetConfigFile(localConfigPath)
	default:
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "marquee"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
		switch {
		case !missing:
			return config.Config{}, "", fmt.Errorf("reading config: %w", err)
		case cfgFile != "":
			if !allowMissing {
				return config.Config{}, "", fmt.Errorf("reading config: %w", err)
			}
		case !allowMissing:
			// No config file found anywhere - create default at .marquee/config.yaml
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				v.SetConfigFile(localConfigPath)
				_ = v.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	cfg := defaults
	if err := v.Unmarshal(&cfg); err != nil {
		return config.Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Log.Path = expandHome(cfg.Log.Path)
	cfg.Tracing.FilePath = expandHome(cfg.Tracing.FilePath)

	configPath := v.ConfigFileUsed()
	if configPath == "" {
		configPath = localConfigPath
	}
	return cfg, configPath, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
