package main

import (
	"github.com/jward/modifiers"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLICallSite is a JSON-friendly indexed call.
type CLICallSite struct {
	ID        int64    `json:"id"`
	File      string   `json:"file"`
	Language  string   `json:"language"`
	Alias     string   `json:"alias"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Modifiers []string `json:"modifiers"`
}

// CLIFile is a JSON-friendly file representation.
type CLIFile struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Language  string `json:"language"`
	LineCount int    `json:"line_count"`
}

// CLIFinding is one result reported by a rule script.
type CLIFinding struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// CLIScan is the operator set of the call reaching one line.
type CLIScan struct {
	File      string   `json:"file"`
	Line      int      `json:"line"`
	Call      string   `json:"call"`
	Modifiers []string `json:"modifiers"`
}

// CLICall is one call found by scan without --line.
type CLICall struct {
	Line      int      `json:"line"`
	EndLine   int      `json:"end_line"`
	Modifiers []string `json:"modifiers"`
}

// CLIFrame is a stack frame as read from a trace.
type CLIFrame struct {
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Function string `json:"function"`
	Class    string `json:"class,omitempty"`
}

// CLIResolved is the call-site frame picked from a trace and its operators.
// Frame is nil when no frame invokes an alias.
type CLIResolved struct {
	Frame     *CLIFrame `json:"frame"`
	Modifiers []string  `json:"modifiers"`
}

// CLIToken is one token of a tokenized file.
type CLIToken struct {
	Line int    `json:"line"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// modifierList keeps empty operator lists as [] in JSON.
func modifierList(symbols []string) []string {
	if symbols == nil {
		return []string{}
	}
	return symbols
}

func callSiteToCLI(cs *modifiers.CallSite) CLICallSite {
	return CLICallSite{
		ID:        cs.ID,
		File:      cs.Path,
		Language:  cs.Language,
		Alias:     cs.Alias,
		StartLine: cs.StartLine,
		EndLine:   cs.EndLine,
		Modifiers: modifierList(cs.Modifiers),
	}
}

func frameToCLI(f modifiers.Frame) *CLIFrame {
	return &CLIFrame{File: f.File, Line: f.Line, Function: f.Function, Class: f.Class}
}
