package runtime

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"

	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/grammar"
	"github.com/jward/modifiers/internal/stack"
)

// makeScanSourceFn creates the "scan_source" host function.
//
// scan_source(source, line, signature[, language]) → list of operators
//
// signature is "Class::method" or "function"; language defaults to php.
func makeScanSourceFn(tokenize grammar.Tokenizer) *object.Builtin {
	return object.NewBuiltin("scan_source", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 && len(args) != 4 {
			return object.Errorf("scan_source: expected 3 or 4 arguments, got %d", len(args))
		}
		src, err := toString(args[0])
		if err != nil {
			return object.Errorf("scan_source: source: %v", err)
		}
		line, err := toInt64(args[1])
		if err != nil {
			return object.Errorf("scan_source: line: %v", err)
		}
		sig, lang, errObj := signatureArgs("scan_source", args[2:])
		if errObj != nil {
			return errObj
		}

		toks, tokErr := tokenize(ctx, lang, []byte(src))
		if tokErr != nil {
			return object.Errorf("scan_source: %v", tokErr)
		}
		return stringsToList(callsite.Scan(toks, int(line), sig).Symbols())
	})
}

// makeCallsInSourceFn creates the "calls_in_source" host function.
//
// calls_in_source(source, signature[, language]) → list of {line, end_line, modifiers}
func makeCallsInSourceFn(tokenize grammar.Tokenizer) *object.Builtin {
	return object.NewBuiltin("calls_in_source", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 && len(args) != 3 {
			return object.Errorf("calls_in_source: expected 2 or 3 arguments, got %d", len(args))
		}
		src, err := toString(args[0])
		if err != nil {
			return object.Errorf("calls_in_source: source: %v", err)
		}
		sig, lang, errObj := signatureArgs("calls_in_source", args[1:])
		if errObj != nil {
			return errObj
		}

		toks, tokErr := tokenize(ctx, lang, []byte(src))
		if tokErr != nil {
			return object.Errorf("calls_in_source: %v", tokErr)
		}
		results := []object.Object{}
		for _, c := range callsite.Calls(toks, sig) {
			results = append(results, object.NewMap(map[string]object.Object{
				"line":      object.NewInt(int64(c.Line)),
				"end_line":  object.NewInt(int64(c.EndLine)),
				"modifiers": stringsToList(c.Modifiers.Symbols()),
			}))
		}
		return object.NewList(results)
	})
}

// signatureArgs reads the (signature[, language]) tail shared by the scan
// functions.
func signatureArgs(name string, args []object.Object) (callsite.Signature, string, object.Object) {
	text, err := toString(args[0])
	if err != nil {
		return callsite.Signature{}, "", object.Errorf("%s: signature: %v", name, err)
	}
	sig, ok := callsite.ParseSignature(text)
	if !ok {
		return callsite.Signature{}, "", object.Errorf("%s: invalid signature %q", name, text)
	}
	lang := grammar.PHP
	if len(args) > 1 {
		lang, err = toString(args[1])
		if err != nil {
			return callsite.Signature{}, "", object.Errorf("%s: language: %v", name, err)
		}
	}
	return sig, lang, nil
}

// makeNormalizeAliasesFn creates the "normalize_aliases" host function.
//
// normalize_aliases(list) → list of canonical alias strings
//
// Elements are function names or [class, method] lists; malformed ones are
// dropped.
func makeNormalizeAliasesFn() *object.Builtin {
	return object.NewBuiltin("normalize_aliases", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("normalize_aliases", 1, len(args))
		}
		list, ok := args[0].(*object.List)
		if !ok {
			return object.Errorf("normalize_aliases: expected list, got %s", args[0].Type())
		}

		decls := make([]any, 0, len(list.Value()))
		for _, item := range list.Value() {
			decls = append(decls, toDecl(item))
		}
		aliases := stack.NormalizeAliases(decls)
		out := make([]string, len(aliases))
		for i, a := range aliases {
			out[i] = a.String()
		}
		return stringsToList(out)
	})
}

// toDecl converts a Risor value into an alias declaration. Non-string list
// elements are kept as nil so normalization drops the pair.
func toDecl(obj object.Object) any {
	switch v := obj.(type) {
	case *object.String:
		return v.Value()
	case *object.List:
		parts := make([]any, 0, len(v.Value()))
		for _, e := range v.Value() {
			if s, ok := e.(*object.String); ok {
				parts = append(parts, s.Value())
			} else {
				parts = append(parts, nil)
			}
		}
		return parts
	default:
		return nil
	}
}

// makeReportFn creates the "report" host function.
//
// report(file, line, message)
func makeReportFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("report", 3, len(args))
		}
		file, err := toString(args[0])
		if err != nil {
			return object.Errorf("report: file: %v", err)
		}
		line, err := toInt64(args[1])
		if err != nil {
			return object.Errorf("report: line: %v", err)
		}
		msg, err := toString(args[2])
		if err != nil {
			return object.Errorf("report: message: %v", err)
		}
		r.report(Finding{File: file, Line: int(line), Message: msg})
		return object.Nil
	})
}

func stringsToList(items []string) *object.List {
	objs := make([]object.Object, len(items))
	for i, s := range items {
		objs[i] = object.NewString(s)
	}
	return object.NewList(objs)
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "script")
}
