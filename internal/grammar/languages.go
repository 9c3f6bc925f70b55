// Package grammar maps source files to languages and turns them into the flat
// token streams the call-site scanner works on.
package grammar

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/stack"
)

// Canonical language names.
const (
	Go  = "go"
	PHP = "php"
)

// extToLanguage maps file extensions to canonical language names.
var extToLanguage = map[string]string{
	".go":    Go,
	".php":   PHP,
	".phtml": PHP,
	".inc":   PHP,
}

// langToGrammar maps language names to tree-sitter Language objects.
// Lazily initialized on first call via sync.Once.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			Go:  golang.GetLanguage(),
			PHP: php.GetLanguage(),
		}
	})
}

// Languages returns the supported language names.
func Languages() []string { return []string{Go, PHP} }

// LanguageForFile returns the canonical language name for a file path based
// on its extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extToLanguage[ext]
	return lang, ok
}

// ParserForLanguage returns the tree-sitter Language for a canonical language
// name. Returns (nil, false) if the language is not supported.
func ParserForLanguage(lang string) (*sitter.Language, bool) {
	initGrammars()
	l, ok := langToGrammar[lang]
	return l, ok
}

// SignatureFor returns the call signature to look for when frame was
// invoked from a file in lang. Go calls are matched by bare name since
// receivers are variables, not type names.
func SignatureFor(lang string, frame stack.Frame) callsite.Signature {
	if lang == Go {
		return callsite.Func(frame.Function)
	}
	return frame.Signature()
}
