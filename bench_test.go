package modifiers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

// benchPHPSource repeats a block of mixed calls so the scanner walks a few
// thousand tokens per file.
var benchPHPSource = func() string {
	var b strings.Builder
	b.WriteString("<?php\nnamespace App;\n\n")
	for i := range 50 {
		fmt.Fprintf(&b, "function step%d($user) {\n", i)
		b.WriteString("    if (!Example::setValue(\"{$user->name()}\")) {\n")
		b.WriteString("        @Example::setValue(\n            ['nested' => [1, 2]],\n        );\n")
		b.WriteString("    }\n")
		b.WriteString("    $total = -helper($user) + helper(2);\n")
		b.WriteString("    // Example::setValue('commented out')\n")
		b.WriteString("    return $total;\n}\n\n")
	}
	return b.String()
}()

func setupBenchEngine(b *testing.B) (*Engine, string) {
	b.Helper()
	dir := b.TempDir()
	e, err := New(filepath.Join(dir, "bench.db"), testAliases...)
	if err != nil {
		b.Fatal(err)
	}
	srcPath := filepath.Join(dir, "bench.php")
	if err := os.WriteFile(srcPath, []byte(benchPHPSource), 0644); err != nil {
		e.Close()
		b.Fatal(err)
	}
	return e, srcPath
}

// BenchmarkIndexFiles_PHP measures a full tokenize, scan and write cycle on
// one file.
func BenchmarkIndexFiles_PHP(b *testing.B) {
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e, srcPath := setupBenchEngine(b)
		b.StartTimer()

		if err := e.IndexFiles(ctx, []string{srcPath}); err != nil {
			e.Close()
			b.Fatal(err)
		}

		b.StopTimer()
		e.Close()
		b.StartTimer()
	}
}

// BenchmarkExtractModifiers measures attribution for a frame near the end of
// the file, the worst case for the line cutoff.
func BenchmarkExtractModifiers(b *testing.B) {
	a := NewAttributor(
		WithFS(fstest.MapFS{"bench.php": &fstest.MapFile{Data: []byte(benchPHPSource)}}),
		WithAliases([]string{"Example", "setValue"}),
	)
	lines := strings.Count(benchPHPSource, "\n")
	frame := Frame{File: "bench.php", Line: lines - 6, Function: "setValue", Class: "Example"}
	ctx := context.Background()

	for b.Loop() {
		a.ExtractModifiers(ctx, frame)
	}
}

// BenchmarkQuerySummary measures the aggregation over an indexed file.
func BenchmarkQuerySummary(b *testing.B) {
	e, srcPath := setupBenchEngine(b)
	defer e.Close()
	if err := e.IndexFiles(context.Background(), []string{srcPath}); err != nil {
		b.Fatal(err)
	}
	q := e.Query()

	for b.Loop() {
		if _, err := q.Summary(); err != nil {
			b.Fatal(err)
		}
	}
}
