package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jward/modifiers"
)

// Colors are dropped automatically when stdout is not a terminal.
var (
	colorFile     = color.New(color.FgCyan).SprintFunc()
	colorLine     = color.New(color.FgYellow).SprintFunc()
	colorModifier = color.New(color.FgMagenta, color.Bold).SprintFunc()
	colorDim      = color.New(color.Faint).SprintFunc()
)

// formatModifiers renders an operator list, or a dim placeholder for a bare
// call.
func formatModifiers(symbols []string) string {
	if len(symbols) == 0 {
		return colorDim("(bare)")
	}
	return colorModifier(strings.Join(symbols, " "))
}

// formatSpan renders "file:line" or "file:start-end".
func formatSpan(file string, start, end int) string {
	span := fmt.Sprint(start)
	if end > start {
		span = fmt.Sprintf("%d-%d", start, end)
	}
	return colorFile(file) + ":" + colorLine(span)
}

// formatCallSitesText prints one call per line.
func formatCallSitesText(w io.Writer, sites []CLICallSite) {
	for _, cs := range sites {
		fmt.Fprintf(w, "%s  %s  %s\n", formatSpan(cs.File, cs.StartLine, cs.EndLine), cs.Alias, formatModifiers(cs.Modifiers))
	}
}

// formatCallsText prints the calls found by scan.
func formatCallsText(w io.Writer, calls []CLICall) {
	for _, c := range calls {
		span := fmt.Sprint(c.Line)
		if c.EndLine > c.Line {
			span = fmt.Sprintf("%d-%d", c.Line, c.EndLine)
		}
		fmt.Fprintf(w, "%s  %s\n", colorLine(span), formatModifiers(c.Modifiers))
	}
}

// formatFindingsText prints findings as "file:line: message".
func formatFindingsText(w io.Writer, findings []CLIFinding) {
	for _, f := range findings {
		fmt.Fprintf(w, "%s: %s\n", formatSpan(f.File, f.Line, f.Line), f.Message)
	}
}

// formatFilesText formats CLIFile results as aligned columns.
func formatFilesText(w io.Writer, files []CLIFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tLANGUAGE\tLINES")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", f.ID, f.Path, f.Language, f.LineCount)
	}
	tw.Flush()
}

// formatSummaryText formats per-alias counts as aligned columns.
func formatSummaryText(w io.Writer, summary []modifiers.AliasSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALIAS\tCALLS\tBARE\tFILES\tMODIFIERS")
	for _, s := range summary {
		ops := make([]string, 0, len(s.Modifiers))
		for op := range s.Modifiers {
			ops = append(ops, op)
		}
		sort.Slice(ops, func(i, j int) bool {
			return modifiers.SetOf(ops[i]) < modifiers.SetOf(ops[j])
		})
		counts := make([]string, len(ops))
		for i, op := range ops {
			counts[i] = fmt.Sprintf("%s=%d", op, s.Modifiers[op])
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", s.Alias, s.Calls, s.Bare, s.Files, strings.Join(counts, " "))
	}
	tw.Flush()
}

// formatTokensText formats tokens as aligned columns with quoted text.
func formatTokensText(w io.Writer, toks []CLIToken) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tKIND\tTEXT")
	for _, t := range toks {
		fmt.Fprintf(tw, "%d\t%s\t%q\n", t.Line, t.Kind, t.Text)
	}
	tw.Flush()
}

func formatScanText(w io.Writer, s CLIScan) {
	fmt.Fprintf(w, "%s  %s  %s\n", formatSpan(s.File, s.Line, s.Line), s.Call, formatModifiers(s.Modifiers))
}

func formatResolvedText(w io.Writer, r CLIResolved) {
	if r.Frame == nil {
		fmt.Fprintln(w, colorDim("no frame invokes an alias"))
		return
	}
	name := r.Frame.Function
	if r.Frame.Class != "" {
		name = r.Frame.Class + "::" + name
	}
	fmt.Fprintf(w, "%s  %s  %s\n", formatSpan(r.Frame.File, r.Frame.Line, r.Frame.Line), name, formatModifiers(r.Modifiers))
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLICallSite:
		formatCallSitesText(w, v)
	case []CLICall:
		formatCallsText(w, v)
	case []CLIFinding:
		formatFindingsText(w, v)
	case []CLIFile:
		formatFilesText(w, v)
	case []modifiers.AliasSummary:
		formatSummaryText(w, v)
	case []CLIToken:
		formatTokensText(w, v)
	case CLIScan:
		formatScanText(w, v)
	case CLIResolved:
		formatResolvedText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}
	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLICallSite:
		return len(r)
	case []CLIFile:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
