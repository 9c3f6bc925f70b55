package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/modifiers"
	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/stack"
)

var (
	flagLimit    int
	flagAlias    string
	flagFile     string
	flagLanguage string
	flagModifier string
	flagBare     bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the call-site index",
	Long:  "Run queries against an indexed tree. Line numbers are 1-based.",
}

func init() {
	queryCmd.PersistentFlags().IntVar(&flagLimit, "limit", 0, "maximum results to print (0 for all)")

	sitesCmd.Flags().StringVar(&flagAlias, "alias-name", "", "only calls to this alias (class::method or function)")
	sitesCmd.Flags().StringVar(&flagFile, "file", "", "only calls in this file")
	sitesCmd.Flags().StringVar(&flagLanguage, "language", "", "only calls in files of this language")
	sitesCmd.Flags().StringVar(&flagModifier, "modifier", "", "only calls carrying this operator")
	sitesCmd.Flags().BoolVar(&flagBare, "bare", false, "only calls without any operator")
	filesCmd.Flags().StringVar(&flagLanguage, "language", "", "only files of this language")

	queryCmd.AddCommand(sitesCmd)
	queryCmd.AddCommand(atCmd)
	queryCmd.AddCommand(summaryCmd)
	queryCmd.AddCommand(filesCmd)
}

// --- Helpers ---

// resolveFilePath converts a file argument to an absolute path.
func resolveFilePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}

// parseLineArg parses a positional line argument.
func parseLineArg(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid line %q: must be a positive integer", value)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid line %q: must be positive", value)
	}
	return n, nil
}

// canonicalAlias folds an alias argument to the form the index stores.
func canonicalAlias(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	sig, ok := callsite.ParseSignature(text)
	if ok {
		if aliases := stack.NormalizeAliases([]any{sig}); len(aliases) == 1 {
			return aliases[0].String(), nil
		}
	}
	return "", fmt.Errorf("invalid alias %q", text)
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// limitResults truncates items to --limit and returns the total before
// truncation when it did.
func limitResults[T any](items []T) ([]T, *int) {
	if flagLimit <= 0 || len(items) <= flagLimit {
		return items, nil
	}
	total := len(items)
	return items[:flagLimit], &total
}

// --- Subcommands ---

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List indexed calls",
	Args:  cobra.NoArgs,
	RunE:  runSites,
}

func runSites(cmd *cobra.Command, args []string) error {
	const command = "sites"
	e, _, err := openEngine(true)
	if err != nil {
		return outputError(command, err)
	}
	defer e.Close()

	alias, err := canonicalAlias(flagAlias)
	if err != nil {
		return outputError(command, err)
	}
	sites, err := e.Query().CallSites(modifiers.CallSiteFilter{
		Alias:    alias,
		Path:     flagFile,
		Language: flagLanguage,
		Modifier: flagModifier,
		Bare:     flagBare,
	})
	if err != nil {
		return outputError(command, err)
	}
	out := make([]CLICallSite, len(sites))
	for i, cs := range sites {
		out[i] = callSiteToCLI(cs)
	}
	shown, total := limitResults(out)
	return outputResult(CLIResult{Command: command, Results: shown, TotalCount: total})
}

var atCmd = &cobra.Command{
	Use:   "at <file> <line>",
	Short: "List the indexed calls spanning a line",
	Args:  cobra.ExactArgs(2),
	RunE:  runAt,
}

func runAt(cmd *cobra.Command, args []string) error {
	const command = "at"
	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError(command, err)
	}
	line, err := parseLineArg(args[1])
	if err != nil {
		return outputError(command, err)
	}

	e, _, err := openEngine(true)
	if err != nil {
		return outputError(command, err)
	}
	defer e.Close()

	sites, err := e.Query().CallSitesAt(file, line)
	if err != nil {
		return outputError(command, err)
	}
	out := make([]CLICallSite, len(sites))
	for i, cs := range sites {
		out[i] = callSiteToCLI(cs)
	}
	return outputResult(CLIResult{Command: command, Results: out})
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count indexed calls and operators per alias",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	const command = "summary"
	e, _, err := openEngine(true)
	if err != nil {
		return outputError(command, err)
	}
	defer e.Close()

	sum, err := e.Query().Summary()
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: sum})
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List indexed files",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

func runFiles(cmd *cobra.Command, args []string) error {
	const command = "files"
	e, _, err := openEngine(true)
	if err != nil {
		return outputError(command, err)
	}
	defer e.Close()

	files, err := e.Query().Files(flagLanguage)
	if err != nil {
		return outputError(command, err)
	}
	out := make([]CLIFile, len(files))
	for i, f := range files {
		out[i] = CLIFile{ID: f.ID, Path: f.Path, Language: f.Language, LineCount: f.LineCount}
	}
	shown, total := limitResults(out)
	return outputResult(CLIResult{Command: command, Results: shown, TotalCount: total})
}

// --- check ---

var checkCmd = &cobra.Command{
	Use:   "check <script>",
	Short: "Run a Risor rule script against the index",
	Long:  "Runs a Risor script with the index exposed as globals. Every finding it reports is printed and makes the command exit non-zero.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	const command = "check"
	e, _, err := openEngine(true)
	if err != nil {
		return outputError(command, err)
	}
	defer e.Close()

	findings, err := e.Check(context.Background(), args[0])
	if err != nil {
		return outputError(command, err)
	}
	out := make([]CLIFinding, len(findings))
	for i, f := range findings {
		out[i] = CLIFinding{File: f.File, Line: f.Line, Message: f.Message}
	}
	if err := outputResult(CLIResult{Command: command, Results: out}); err != nil {
		return err
	}
	if len(out) > 0 {
		errorHandled = true
		return fmt.Errorf("%d finding(s)", len(out))
	}
	return nil
}
