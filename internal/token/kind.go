package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota

	// Whitespace is a run of spaces, tabs and newlines.
	Whitespace
	// Comment is a line or block comment.
	Comment
	// DocComment is a /** ... */ comment.
	DocComment
	// OpenTag is <?php or <? including the whitespace the tag swallows.
	OpenTag
	// OpenTagWithEcho is <?=.
	OpenTagWithEcho
	// CloseTag is ?> including one trailing newline.
	CloseTag
	// InlineHTML is text outside of PHP tags.
	InlineHTML

	// Ident is a bare name (function, class, constant, method).
	Ident
	// Variable is a $name.
	Variable
	// Keyword is a reserved word of the source language.
	Keyword
	// DoubleColon is the scope resolution operator ::.
	DoubleColon
	// ObjectOperator is member access: -> or ?->.
	ObjectOperator
	// NsSeparator separates qualified name segments.
	NsSeparator

	// Quote is the delimiter of a string with interpolation. The same token
	// opens and closes the string.
	Quote
	// String is a complete string literal without interpolation.
	String
	// StringPart is literal text inside an interpolated string.
	StringPart
	// Number is a numeric literal.
	Number

	// LParen is (.
	LParen
	// LBracket is [.
	LBracket
	// LBrace is {.
	LBrace
	// CurlyOpen is the { of {$expr} inside an interpolated string.
	CurlyOpen
	// DollarOpenCurly is ${ inside an interpolated string.
	DollarOpenCurly
	// RParen is ).
	RParen
	// RBracket is ].
	RBracket
	// RBrace is }.
	RBrace

	// Bang is !.
	Bang
	// At is @.
	At
	// Plus is +.
	Plus
	// Minus is -.
	Minus
	// Tilde is ~.
	Tilde

	// Other is any operator or punctuation without a dedicated kind.
	Other
)

var kindNames = [...]string{
	Invalid:         "Invalid",
	Whitespace:      "Whitespace",
	Comment:         "Comment",
	DocComment:      "DocComment",
	OpenTag:         "OpenTag",
	OpenTagWithEcho: "OpenTagWithEcho",
	CloseTag:        "CloseTag",
	InlineHTML:      "InlineHTML",
	Ident:           "Ident",
	Variable:        "Variable",
	Keyword:         "Keyword",
	DoubleColon:     "DoubleColon",
	ObjectOperator:  "ObjectOperator",
	NsSeparator:     "NsSeparator",
	Quote:           "Quote",
	String:          "String",
	StringPart:      "StringPart",
	Number:          "Number",
	LParen:          "LParen",
	LBracket:        "LBracket",
	LBrace:          "LBrace",
	CurlyOpen:       "CurlyOpen",
	DollarOpenCurly: "DollarOpenCurly",
	RParen:          "RParen",
	RBracket:        "RBracket",
	RBrace:          "RBrace",
	Bang:            "Bang",
	At:              "At",
	Plus:            "Plus",
	Minus:           "Minus",
	Tilde:           "Tilde",
	Other:           "Other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Insignificant reports whether tokens of this kind are skipped when
// matching: whitespace, comments and tag delimiters.
func (k Kind) Insignificant() bool {
	switch k {
	case Whitespace, Comment, DocComment, OpenTag, OpenTagWithEcho, CloseTag, InlineHTML:
		return true
	default:
		return false
	}
}

// Opens reports whether the kind raises bracket depth.
func (k Kind) Opens() bool {
	switch k {
	case LParen, LBracket, LBrace, CurlyOpen, DollarOpenCurly:
		return true
	default:
		return false
	}
}

// Closes reports whether the kind lowers bracket depth.
func (k Kind) Closes() bool {
	switch k {
	case RParen, RBracket, RBrace:
		return true
	default:
		return false
	}
}

// Qualifier reports whether the kind can be part of a qualified name chain
// such as \Vendor\Pkg\Class::.
func (k Kind) Qualifier() bool {
	switch k {
	case Ident, DoubleColon, NsSeparator:
		return true
	default:
		return false
	}
}

// Modifier reports whether the kind is one of the unary prefix operators.
func (k Kind) Modifier() bool {
	switch k {
	case Bang, At, Plus, Minus, Tilde:
		return true
	default:
		return false
	}
}
