package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/modifiers/internal/store"
)

// Risor scripts read the index through these functions. Filters arrive as
// Risor maps with primitive values and results leave as lists of maps.

// makeCallSitesFn creates the "call_sites" host function.
//
// call_sites([filter]) where filter keys are alias, path, language,
// modifier and bare.
func makeCallSitesFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("call_sites", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return object.Errorf("call_sites: expected at most 1 argument, got %d", len(args))
		}
		var filter store.CallSiteFilter
		if len(args) == 1 {
			m, err := extractMap(args[0])
			if err != nil {
				return object.Errorf("call_sites: %v", err)
			}
			filter = store.CallSiteFilter{
				Alias:    getString(m, "alias"),
				Path:     getString(m, "path"),
				Language: getString(m, "language"),
				Modifier: getString(m, "modifier"),
				Bare:     getBool(m, "bare"),
			}
		}

		sites, err := s.CallSites(filter)
		if err != nil {
			return object.Errorf("call_sites: %v", err)
		}
		return callSitesToList(sites)
	})
}

// makeCallSitesAtFn creates the "call_sites_at" host function.
//
// call_sites_at(path, line)
func makeCallSitesAtFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("call_sites_at", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("call_sites_at", 2, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("call_sites_at: path: %v", err)
		}
		line, err := toInt64(args[1])
		if err != nil {
			return object.Errorf("call_sites_at: line: %v", err)
		}

		sites, queryErr := s.CallSitesAt(path, int(line))
		if queryErr != nil {
			return object.Errorf("call_sites_at: %v", queryErr)
		}
		return callSitesToList(sites)
	})
}

// makeFilesFn creates the "files" host function.
//
// files([language])
func makeFilesFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("files", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return object.Errorf("files: expected at most 1 argument, got %d", len(args))
		}

		var (
			files []*store.File
			err   error
		)
		if len(args) == 1 {
			lang, convErr := toString(args[0])
			if convErr != nil {
				return object.Errorf("files: %v", convErr)
			}
			files, err = s.FilesByLanguage(lang)
		} else {
			files, err = s.Files()
		}
		if err != nil {
			return object.Errorf("files: %v", err)
		}

		results := make([]object.Object, 0, len(files))
		for _, f := range files {
			results = append(results, object.NewMap(map[string]object.Object{
				"id":         object.NewInt(f.ID),
				"path":       object.NewString(f.Path),
				"language":   object.NewString(f.Language),
				"hash":       object.NewString(f.Hash),
				"line_count": object.NewInt(int64(f.LineCount)),
			}))
		}
		return object.NewList(results)
	})
}

// makeDBQueryFn creates a db_query bridge that executes read-only SQL.
// Returns a list of maps (column name -> value).
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got %d", len(args))
		}
		sqlStr, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}

		sqlStr = strings.TrimSuffix(strings.TrimSpace(sqlStr), ";")
		if !strings.HasPrefix(strings.ToUpper(sqlStr), "SELECT") {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}
		if strings.Contains(sqlStr, ";") {
			return object.Errorf("db_query: only a single statement is allowed")
		}

		queryArgs := make([]any, 0, len(args)-1)
		for _, arg := range args[1:] {
			switch v := arg.(type) {
			case *object.Int:
				queryArgs = append(queryArgs, v.Value())
			case *object.Float:
				queryArgs = append(queryArgs, v.Value())
			case *object.String:
				queryArgs = append(queryArgs, v.Value())
			case *object.Bool:
				queryArgs = append(queryArgs, v.Value())
			case *object.NilType:
				queryArgs = append(queryArgs, nil)
			default:
				queryArgs = append(queryArgs, arg.Inspect())
			}
		}

		rows, queryErr := s.DB().QueryContext(ctx, sqlStr, queryArgs...)
		if queryErr != nil {
			return object.Errorf("db_query: %v", queryErr)
		}
		defer rows.Close()

		cols, colErr := rows.Columns()
		if colErr != nil {
			return object.Errorf("db_query: columns: %v", colErr)
		}

		results := []object.Object{}
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return object.Errorf("db_query: scan: %v", err)
			}
			row := make(map[string]object.Object, len(cols))
			for i, col := range cols {
				row[col] = sqlValueToObject(values[i])
			}
			results = append(results, object.NewMap(row))
		}
		if err := rows.Err(); err != nil {
			return object.Errorf("db_query: rows: %v", err)
		}
		return object.NewList(results)
	})
}

func callSitesToList(sites []*store.CallSite) *object.List {
	results := make([]object.Object, 0, len(sites))
	for _, cs := range sites {
		results = append(results, object.NewMap(map[string]object.Object{
			"id":         object.NewInt(cs.ID),
			"file_id":    object.NewInt(cs.FileID),
			"file":       object.NewString(cs.Path),
			"language":   object.NewString(cs.Language),
			"alias":      object.NewString(cs.Alias),
			"class":      object.NewString(cs.Class),
			"name":       object.NewString(cs.Name),
			"start_line": object.NewInt(int64(cs.StartLine)),
			"end_line":   object.NewInt(int64(cs.EndLine)),
			"modifiers":  stringsToList(cs.Modifiers),
		}))
	}
	return object.NewList(results)
}

// sqlValueToObject converts a database value to a Risor object.
func sqlValueToObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

// --- Map extraction helpers ---

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	if s, ok := m[key].(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getBool(m map[string]object.Object, key string) bool {
	if b, ok := m[key].(*object.Bool); ok {
		return b.Value()
	}
	return false
}

func toInt64(obj object.Object) (int64, error) {
	switch v := obj.(type) {
	case *object.Int:
		return v.Value(), nil
	case *object.Float:
		return int64(v.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
