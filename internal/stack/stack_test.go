package stack

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/modifiers/internal/callsite"
)

func TestNormalizeAliases(t *testing.T) {
	t.Parallel()
	got := NormalizeAliases([]any{
		"SetValue",
		[]string{`\App\Example`, "setValue"},
		[2]string{"Example", "Get"},
		[]any{"Example", "Has"},
		Alias{Class: "Other", Function: "Run"},
		callsite.Func("Bare"),
	})
	assert.Equal(t, []Alias{
		{Function: "setvalue"},
		{Class: `app\example`, Function: "setvalue"},
		{Class: "example", Function: "get"},
		{Class: "example", Function: "has"},
		{Class: "other", Function: "run"},
		{Function: "bare"},
	}, got)
}

func TestNormalizeAliases_DropsMalformed(t *testing.T) {
	t.Parallel()
	got := NormalizeAliases([]any{
		"",
		"1abc",
		"has space",
		"a-b",
		[]string{"OnlyOne"},
		[]string{"A", "b", "c"},
		[]any{"A", 1},
		[]any{1, 2},
		[]any{"Example", 42, "Has"},
		[]string{"Bad Class", "m"},
		[]string{"Class", `bad\name`},
		42,
		nil,
	})
	assert.Empty(t, got)
}

func TestNormalizeAliases_HighBytes(t *testing.T) {
	t.Parallel()
	got := NormalizeAliases([]any{"caf\xc3\xa9", "_x9"})
	assert.Equal(t, []Alias{{Function: "caf\xc3\xa9"}, {Function: "_x9"}}, got)
}

func TestAlias_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "example::get", Alias{Class: "example", Function: "get"}.String())
	assert.Equal(t, "get", Alias{Function: "get"}.String())
	assert.Equal(t, callsite.Method("example", "get"), Alias{Class: "example", Function: "get"}.Signature())
}

func TestListed(t *testing.T) {
	t.Parallel()
	aliases := []Alias{{Class: `app\example`, Function: "setvalue"}, {Function: "helper"}}

	assert.True(t, Listed(Frame{Class: `\App\Example`, Function: "setValue"}, aliases))
	assert.True(t, Listed(Frame{Function: "HELPER"}, aliases))
	assert.False(t, Listed(Frame{Class: "Example", Function: "helper"}, aliases))
	assert.False(t, Listed(Frame{Function: "setValue"}, aliases))
}

func TestResolve_AnchorFrameCarriesCallSite(t *testing.T) {
	t.Parallel()
	frames := []Frame{
		{File: "/app/Example.php", Line: 20, Function: "getModifiers", Class: "Example"},
		{File: "/app/index.php", Line: 7, Function: "setValue", Class: "Example"},
		{File: "/app/index.php", Line: 30, Function: "main"},
	}
	aliases := NormalizeAliases([]any{[]string{"Example", "setValue"}})

	got, ok := Resolve(frames, aliases, DefaultInternal)
	require.True(t, ok)
	assert.Equal(t, frames[1], got)
}

func TestResolve_OutermostAnchorWins(t *testing.T) {
	t.Parallel()
	frames := []Frame{
		{File: "/app/Example.php", Line: 12, Function: "setValue", Class: "Example"},
		{File: "/app/Example.php", Line: 40, Function: "setMany", Class: "Example"},
		{File: "/app/index.php", Line: 3, Function: "run"},
	}
	aliases := NormalizeAliases([]any{
		[]string{"Example", "setValue"},
		[]string{"Example", "setMany"},
	})

	got, ok := Resolve(frames, aliases, DefaultInternal)
	require.True(t, ok)
	assert.Equal(t, "setMany", got.Function)
	assert.Equal(t, 40, got.Line)
}

func TestResolve_NoAnchor(t *testing.T) {
	t.Parallel()
	frames := []Frame{{File: "/a.php", Line: 1, Function: "foo"}}
	_, ok := Resolve(frames, NormalizeAliases([]any{"bar"}), DefaultInternal)
	assert.False(t, ok)

	_, ok = Resolve(nil, NormalizeAliases([]any{"bar"}), DefaultInternal)
	assert.False(t, ok)
}

func TestResolve_InternalFramesSkipped(t *testing.T) {
	t.Parallel()
	frames := []Frame{
		{Function: "spl_autoload_call"},
		{File: "/app/index.php", Line: 9, Function: "helper"},
	}
	got, ok := Resolve(frames, NormalizeAliases([]any{"spl_autoload_call", "helper"}), DefaultInternal)
	require.True(t, ok)
	assert.Equal(t, 9, got.Line)

	// An anchor that is itself internal leaves only the frames after it.
	frames = []Frame{
		{File: "/app/Loader.php", Line: 2, Function: "load"},
		{File: "/app/index.php", Line: 5, Function: "spl_autoload_call"},
		{File: "/app/index.php", Line: 6, Function: "boot"},
	}
	got, ok = Resolve(frames, NormalizeAliases([]any{"spl_autoload_call"}), DefaultInternal)
	require.True(t, ok)
	assert.Equal(t, "boot", got.Function)
}

func TestFrame_Complete(t *testing.T) {
	t.Parallel()
	assert.True(t, Frame{File: "a.php", Line: 1, Function: "f"}.Complete())
	assert.False(t, Frame{Line: 1, Function: "f"}.Complete())
	assert.False(t, Frame{File: "a.php", Function: "f"}.Complete())
}

func TestSplitFuncName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, class, fn string
	}{
		{"github.com/jward/modifiers.(*Attributor).Modifiers", "Attributor", "Modifiers"},
		{"github.com/jward/modifiers.example.SetValue", "example", "SetValue"},
		{"github.com/jward/modifiers.(*List[...]).At", "List", "At"},
		{"github.com/jward/modifiers.Get", "", "Get"},
		{"github.com/jward/modifiers.Run.func1", "", "Run.func1"},
		{"github.com/jward/modifiers.Run.func1.2", "", "Run.func1.2"},
		{"github.com/jward/modifiers.glob..func1", "", "glob..func1"},
		{"main.main", "", "main"},
		{"gopkg.in/yaml%2ev3.(*parser).parse", "parser", "parse"},
		{"github.com/jward/modifiers.Store.function", "Store", "function"},
	}
	for _, tt := range tests {
		class, fn := SplitFuncName(tt.in)
		assert.Equal(t, tt.class, class, tt.in)
		assert.Equal(t, tt.fn, fn, tt.in)
	}
}

type recorder struct{}

//go:noinline
func (recorder) Record() []Frame { return Capture(0) }

func TestCapture_ShiftsCallPositions(t *testing.T) {
	t.Parallel()
	frames := recorder{}.Record()
	require.GreaterOrEqual(t, len(frames), 2)

	assert.Equal(t, "recorder", frames[0].Class)
	assert.Equal(t, "Record", frames[0].Function)
	assert.True(t, strings.HasSuffix(frames[0].File, "stack_test.go"), frames[0].File)
	assert.Positive(t, frames[0].Line)

	assert.Equal(t, "TestCapture_ShiftsCallPositions", frames[1].Function)
	assert.Empty(t, frames[len(frames)-1].File)
}

func TestCapture_ResolvesGoAnchor(t *testing.T) {
	t.Parallel()
	aliases := NormalizeAliases([]any{[]string{"recorder", "Record"}})
	got, ok := Resolve(recorder{}.Record(), aliases, nil)
	require.True(t, ok)
	assert.Equal(t, "Record", got.Function)
	assert.True(t, strings.HasSuffix(got.File, "stack_test.go"))
}

func TestDecodeTrace_PHPBacktraceJSON(t *testing.T) {
	t.Parallel()
	src := `[
	  {"file": "/app/Example.php", "line": 20, "function": "getModifiers", "class": "Example", "type": "->", "args": []},
	  {"file": "/app/index.php", "line": 7, "function": "setValue", "class": "Example", "type": "::"}
	]`
	frames, err := DecodeTrace(strings.NewReader(src), FormatJSON)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, Frame{File: "/app/index.php", Line: 7, Function: "setValue", Class: "Example"}, frames[1])
}

func TestTrace_MsgpackRoundTrip(t *testing.T) {
	t.Parallel()
	frames := []Frame{
		{File: "/app/index.php", Line: 7, Function: "setValue", Class: "Example"},
		{Function: "{main}"},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeTrace(&buf, FormatMsgpack, frames))

	got, err := DecodeTrace(&buf, FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, frames, got)
}

func TestDecodeTrace_Errors(t *testing.T) {
	t.Parallel()
	_, err := DecodeTrace(strings.NewReader("[]"), "yaml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = DecodeTrace(strings.NewReader("{not json"), FormatJSON)
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FormatMsgpack, FormatForPath("trace.MSGPACK"))
	assert.Equal(t, FormatJSON, FormatForPath("trace.json"))
	assert.Equal(t, FormatJSON, FormatForPath("trace"))
}
