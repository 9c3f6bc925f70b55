// Package config loads the .modifiers.toml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jward/modifiers/internal/grammar"
)

// FileName is the project file looked up from the working directory upward.
const FileName = ".modifiers.toml"

// Config is a decoded project file.
type Config struct {
	// Path of the file, empty for the defaults.
	Path string `toml:"-"`
	// Root is the directory holding the file.
	Root string `toml:"-"`

	Database     string   `toml:"database"`
	Parallel     int      `toml:"parallel"`
	PHPTokenizer string   `toml:"php_tokenizer"`
	Languages    []string `toml:"languages"`
	Internal     []string `toml:"internal"`
	Aliases      []Alias  `toml:"alias"`
}

// Alias is one [[alias]] table: either function, or class and method.
type Alias struct {
	Function string `toml:"function"`
	Class    string `toml:"class"`
	Method   string `toml:"method"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	return &Config{
		Database:  ".modifiers.db",
		Languages: grammar.Languages(),
		Internal:  []string{"spl_autoload_call"},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest project file above startDir, or the defaults
// when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes and validates a project file. Keys the file leaves out keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must not be negative, got %d", c.Parallel)
	}
	if _, ok := grammar.TokenizerNamed(c.PHPTokenizer); !ok {
		return fmt.Errorf("unknown php_tokenizer %q", c.PHPTokenizer)
	}
	for _, lang := range c.Languages {
		if _, ok := grammar.ParserForLanguage(lang); !ok {
			return fmt.Errorf("unsupported language %q", lang)
		}
	}
	for i, a := range c.Aliases {
		hasFunc := strings.TrimSpace(a.Function) != ""
		hasMethod := strings.TrimSpace(a.Class) != "" || strings.TrimSpace(a.Method) != ""
		switch {
		case hasFunc && hasMethod:
			return fmt.Errorf("alias %d: set either function or class and method", i+1)
		case !hasFunc && !hasMethod:
			return fmt.Errorf("alias %d: empty", i+1)
		}
	}
	return nil
}

// Decls returns the alias declarations in the form stack.NormalizeAliases
// accepts. Malformed names are left for normalization to drop.
func (c *Config) Decls() []any {
	decls := make([]any, 0, len(c.Aliases))
	for _, a := range c.Aliases {
		if a.Function != "" {
			decls = append(decls, a.Function)
			continue
		}
		decls = append(decls, []string{a.Class, a.Method})
	}
	return decls
}

// InternalDecls returns the internal frame names as alias declarations.
func (c *Config) InternalDecls() []any {
	decls := make([]any, len(c.Internal))
	for i, name := range c.Internal {
		decls[i] = name
	}
	return decls
}

// DatabasePath resolves Database against Root.
func (c *Config) DatabasePath() string {
	if c.Database == "" || filepath.IsAbs(c.Database) || c.Root == "" {
		return c.Database
	}
	return filepath.Join(c.Root, c.Database)
}

// Tokenizer returns the tokenizer selected by php_tokenizer.
func (c *Config) Tokenizer() grammar.Tokenizer {
	tok, ok := grammar.TokenizerNamed(c.PHPTokenizer)
	if !ok {
		return grammar.Tokenize
	}
	return tok
}
