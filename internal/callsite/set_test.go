package callsite

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_OnlyAlphabetSymbols(t *testing.T) {
	t.Parallel()
	s := SetOf("!", "?", "&", "@", "!!", "")
	assert.Equal(t, []string{"!", "@"}, s.Symbols())
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Has("?"))
	assert.Equal(t, s, s.Add("^"))
}

func TestSet_Membership(t *testing.T) {
	t.Parallel()
	s := SetOf("~", "+")
	assert.True(t, s.Has("+"))
	assert.True(t, s.HasAll("+", "~"))
	assert.False(t, s.HasAll("+", "-"))
	assert.True(t, s.HasAll())
	assert.False(t, s.Empty())
	assert.True(t, Set(0).Empty())
	assert.Equal(t, []string{}, Set(0).Symbols())
}

func TestSet_UnionDeduplicates(t *testing.T) {
	t.Parallel()
	s := SetOf("!", "@").Union(SetOf("@", "-"))
	assert.Equal(t, []string{"!", "@", "-"}, s.Symbols())
	assert.Equal(t, "{! @ -}", s.String())
}

func TestSet_JSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(SetOf("-", "!"))
	require.NoError(t, err)
	assert.JSONEq(t, `["!","-"]`, string(data))

	var s Set
	require.NoError(t, json.Unmarshal([]byte(`["~","nope","@"]`), &s))
	assert.Equal(t, SetOf("@", "~"), s)
}

func TestParseSignature(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Signature
		ok   bool
	}{
		{"foo", Func("foo"), true},
		{" Example::setValue ", Method("Example", "setValue"), true},
		{`App\Example::setValue`, Method(`App\Example`, "setValue"), true},
		{"", Signature{}, false},
		{"::x", Signature{}, false},
		{"A::", Signature{}, false},
		{"A::b::c", Signature{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseSignature(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseSignature(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseSignature(%q)", tt.in)
	}
}

func TestSignature_Folded(t *testing.T) {
	t.Parallel()
	class, name := Method(`\Vendor\Pkg\Example`, "SetValue").folded()
	assert.Equal(t, "example", class)
	assert.Equal(t, "setvalue", name)
	assert.Equal(t, `\Vendor\Pkg\Example::SetValue`, Method(`\Vendor\Pkg\Example`, "SetValue").String())
	assert.False(t, Func("x").IsMethod())
}

func TestLower_ASCIIOnly(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc_1", Lower("AbC_1"))
	assert.Equal(t, "caf\xc3\x89", Lower("CAF\xc3\x89"))
	assert.Equal(t, "same", Lower("same"))
}
