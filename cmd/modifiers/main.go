package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/modifiers"
	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/config"
)

var (
	flagDB      string
	flagFormat  string
	flagConfig  string
	flagAliases []string
	flagVerbose bool
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "modifiers",
	Short:         "Read the unary operators written in front of calls",
	Long:          "Modifiers finds calls to configured aliases and reports the prefix operators (! @ + - ~) written in front of each one.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: database from .modifiers.toml)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "project file (default: nearest .modifiers.toml)")
	rootCmd.PersistentFlags().StringArrayVar(&flagAliases, "alias", nil, "extra alias, Class::method or function (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(tokensCmd)
}

// loadConfig reads --config, or the nearest project file above the working
// directory, or the defaults.
func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	return config.Discover(cwd)
}

// newLogger writes to stderr with --verbose and discards otherwise.
func newLogger() *slog.Logger {
	if !flagVerbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// flagAliasDecls parses --alias values. Invalid ones are reported rather
// than silently dropped.
func flagAliasDecls() ([]any, error) {
	decls := make([]any, 0, len(flagAliases))
	for _, text := range flagAliases {
		sig, ok := callsite.ParseSignature(text)
		if !ok {
			return nil, fmt.Errorf("invalid alias %q", text)
		}
		decls = append(decls, sig)
	}
	return decls, nil
}

// buildOptions turns the project file and global flags into Engine and
// Attributor options.
func buildOptions(cfg *config.Config) ([]modifiers.Option, error) {
	extra, err := flagAliasDecls()
	if err != nil {
		return nil, err
	}
	opts := []modifiers.Option{
		modifiers.WithAliases(cfg.Decls()...),
		modifiers.WithAliases(extra...),
		modifiers.WithInternal(cfg.InternalDecls()...),
		modifiers.WithTokenizer(cfg.Tokenizer()),
		modifiers.WithLogger(newLogger()),
	}
	if len(cfg.Languages) > 0 {
		opts = append(opts, modifiers.WithLanguages(cfg.Languages...))
	}
	if cfg.Parallel > 0 {
		opts = append(opts, modifiers.WithWorkers(cfg.Parallel))
	}
	return opts, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the project
// file. Relative paths from the defaults resolve against the repo root.
func resolveDBPath(cfg *config.Config, repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	path := cfg.DatabasePath()
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoRoot, path)
}

// openEngine loads the configuration and opens the Engine. When mustExist is
// set the database has to be there already.
func openEngine(mustExist bool) (*modifiers.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(cfg, findRepoRoot(cwd))
	if mustExist {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("database not found: %s (run 'modifiers index' first)", dbPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	e, err := modifiers.New(dbPath, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating engine: %w", err)
	}
	return e, cfg, nil
}
