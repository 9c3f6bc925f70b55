package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/modifiers"
	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/config"
	"github.com/jward/modifiers/internal/grammar"
	"github.com/jward/modifiers/internal/stack"
	"github.com/jward/modifiers/internal/token"
)

var (
	flagLine        int
	flagCall        string
	flagLang        string
	flagTraceFormat string
	flagAll         bool
)

func init() {
	scanCmd.Flags().IntVar(&flagLine, "line", 0, "line the call reaches; omit to list every call")
	scanCmd.Flags().StringVar(&flagCall, "call", "", "call signature, Class::method or function")
	scanCmd.Flags().StringVar(&flagLang, "lang", "", "source language (default: from the file extension)")
	_ = scanCmd.MarkFlagRequired("call")

	tokensCmd.Flags().StringVar(&flagLang, "lang", "", "source language (default: from the file extension)")
	tokensCmd.Flags().BoolVar(&flagAll, "all", false, "include whitespace and comments")

	resolveCmd.Flags().StringVar(&flagTraceFormat, "trace-format", "", "trace encoding: json|msgpack (default: from the file extension)")
}

// tokenizeFile reads path and tokenizes it with the configured tokenizer.
func tokenizeFile(ctx context.Context, cfg *config.Config, path string) (string, []token.Token, error) {
	lang := flagLang
	if lang == "" {
		detected, ok := grammar.LanguageForFile(path)
		if !ok {
			detected = grammar.PHP
		}
		lang = detected
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	toks, err := cfg.Tokenizer()(ctx, lang, src)
	if err != nil {
		return "", nil, fmt.Errorf("tokenize %s: %w", path, err)
	}
	return lang, toks, nil
}

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Read the operators in front of a call in one file",
	Long:  "Prints the operators written in front of the call to --call that reaches --line. Without --line every terminated call is listed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	const command = "scan"
	sig, ok := callsite.ParseSignature(flagCall)
	if !ok {
		return outputError(command, fmt.Errorf("invalid signature %q", flagCall))
	}
	cfg, err := loadConfig()
	if err != nil {
		return outputError(command, err)
	}
	lang, toks, err := tokenizeFile(context.Background(), cfg, args[0])
	if err != nil {
		return outputError(command, err)
	}
	sig = grammar.SignatureFor(lang, stack.Frame{Class: sig.Class, Function: sig.Name})

	if flagLine <= 0 {
		calls := callsite.Calls(toks, sig)
		out := make([]CLICall, len(calls))
		for i, c := range calls {
			out[i] = CLICall{Line: c.Line, EndLine: c.EndLine, Modifiers: modifierList(c.Modifiers.Symbols())}
		}
		return outputResult(CLIResult{Command: command, Results: out})
	}

	mods := callsite.Scan(toks, flagLine, sig)
	return outputResult(CLIResult{Command: command, Results: CLIScan{
		File:      args[0],
		Line:      flagLine,
		Call:      flagCall,
		Modifiers: modifierList(mods.Symbols()),
	}})
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the tokens the scanner sees for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	const command = "tokens"
	cfg, err := loadConfig()
	if err != nil {
		return outputError(command, err)
	}
	_, toks, err := tokenizeFile(context.Background(), cfg, args[0])
	if err != nil {
		return outputError(command, err)
	}

	// Lines are counted from newlines, the way the scanner counts them.
	out := make([]CLIToken, 0, len(toks))
	line := 1
	for _, t := range toks {
		if flagAll || t.Significant() {
			out = append(out, CLIToken{Line: line, Kind: t.Kind.String(), Text: t.Text})
		}
		line += t.Newlines()
	}
	return outputResult(CLIResult{Command: command, Results: out})
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <trace>",
	Short: "Resolve the modifiers of an exported stack trace",
	Long:  "Reads a debug_backtrace()-shaped trace (JSON or msgpack, innermost frame first), picks the call-site frame for the configured aliases and prints its operators.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	const command = "resolve"
	cfg, err := loadConfig()
	if err != nil {
		return outputError(command, err)
	}
	opts, err := buildOptions(cfg)
	if err != nil {
		return outputError(command, err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return outputError(command, fmt.Errorf("open trace: %w", err))
	}
	defer f.Close()
	format := flagTraceFormat
	if format == "" {
		format = stack.FormatForPath(args[0])
	}
	frames, err := stack.DecodeTrace(f, format)
	if err != nil {
		return outputError(command, err)
	}

	a := modifiers.NewAttributor(opts...)
	if len(a.Aliases()) == 0 {
		return outputError(command, fmt.Errorf("no aliases configured (add [[alias]] to %s or pass --alias)", cfgName(cfg)))
	}
	result := CLIResolved{Modifiers: []string{}}
	if frame, ok := a.Resolve(frames); ok {
		result.Frame = frameToCLI(frame)
		result.Modifiers = modifierList(a.ExtractModifiers(context.Background(), frame).Symbols())
	}
	return outputResult(CLIResult{Command: command, Results: result})
}
