package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiam/guix-crates/ast"
)

func TestParserBuildTree(t *testing.T) {
	testCases := []struct {
		In  string
		Out string
	}{
		{
			In:  ``,
			Out: ``,
		},
		{
			In:  "  \n\t ",
			Out: ``,
		},
		{
			In:  `()`,
			Out: `()`,
		},
		{
			In:  `foo`,
			Out: `foo`,
		},
		{
			In:  `(a b c)`,
			Out: `(a b c)`,
		},
		{
			In:  "(a\n\t b\n\nc\n)",
			Out: `(a b c)`,
		},
		{
			In:  `() (1) ()`,
			Out: `() (1) ()`,
		},
		{
			In:  `(1 2 () (3(4(5))) 6 (7))`,
			Out: `(1 2 () (3 (4 (5))) 6 (7))`,
		},
		{
			In:  `(define-public rust-foo-1 (package (name "rust-foo")))`,
			Out: `(define-public rust-foo-1 (package (name "rust-foo")))`,
		},
		{
			In:  "; a comment\n(a ; trailing\n b) ; end",
			Out: `(a b)`,
		},
		{
			In:  ";; only a comment",
			Out: ``,
		},
		{
			In:  `"ABC		DEF	() GHI ;jkl mno" def`,
			Out: "\"ABC\t\tDEF\t() GHI ;jkl mno\" def",
		},
		{
			In:  `"a\"b"`,
			Out: `"a\"b"`,
		},
		{
			In:  `"a\\" b`,
			Out: `"a\\" b`,
		},
		{
			In:  `""`,
			Out: `""`,
		},
		{
			In:  "\"multi\nline\"",
			Out: "\"multi\nline\"",
		},
		{
			In:  `'foo`,
			Out: `foo`,
		},
		{
			In:  "`(a ,b)",
			Out: `(a ,b)`,
		},
		{
			In:  `(list 'a '(b c) ''d)`,
			Out: `(list a (b c) d)`,
		},
		{
			In:  `' foo`,
			Out: `foo`,
		},
		{
			In:  `a"b"c`,
			Out: `a "b" c`,
		},
		{
			In:  `(a)(b)`,
			Out: `(a) (b)`,
		},
		{
			In:  `foo;bar`,
			Out: `foo;bar`,
		},
		{
			In:  `#:key #t #\a 1.0 -1 %foo`,
			Out: `#:key #t #\a 1.0 -1 %foo`,
		},
		{
			In:  `(fn1 "😊" 🤖)`,
			Out: `(fn1 "😊" 🤖)`,
		},
	}

	for i := range testCases {
		nodes, err := ParseString(testCases[i].In)
		assert.NoError(t, err, "input %q", testCases[i].In)
		assert.NotNil(t, nodes)

		s := ast.Encode(nodes...)
		assert.Equal(t, testCases[i].Out, string(s))
	}
}

func TestParserErrors(t *testing.T) {
	testCases := []struct {
		In  string
		Err error
	}{
		{In: `(`, Err: ErrUnterminatedList},
		{In: `(a (b c)`, Err: ErrUnterminatedList},
		{In: `(a ; comment )`, Err: ErrUnterminatedList},
		{In: `(a '`, Err: ErrUnexpectedInput},
		{In: `"abc`, Err: ErrUnterminatedString},
		{In: `(a "b)`, Err: ErrUnterminatedString},
		{In: `"abc\"`, Err: ErrUnterminatedString},
		{In: `"abc\`, Err: ErrUnterminatedString},
		{In: `)`, Err: ErrUnexpectedInput},
		{In: `(a) )`, Err: ErrUnexpectedInput},
		{In: `foo '`, Err: ErrUnexpectedInput},
		{In: `(a ')`, Err: ErrUnexpectedInput},
		{In: `'`, Err: ErrUnexpectedInput},
	}

	for i := range testCases {
		nodes, err := ParseString(testCases[i].In)
		assert.Nil(t, nodes)
		assert.True(t, errors.Is(err, testCases[i].Err), "input %q: got %v", testCases[i].In, err)
		assert.False(t, errors.Is(err, errNoMatch))
		t.Log(err)
	}
}

func TestParserErrorPosition(t *testing.T) {
	_, err := ParseString("(a\n  (b \"c)")

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Pos.Line)
	assert.Equal(t, 6, perr.Pos.Col)
	assert.Equal(t, `"c)`, perr.Near)
	assert.Equal(t, `2:6: unterminated string near "\"c)"`, err.Error())

	_, err = ParseString("(a")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, `1:1: unterminated list near "(a"`, err.Error())

	_, err = ParseString("a )")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Pos.Col)
}

func TestParserWhitespaceAndComments(t *testing.T) {
	plain := `(define-public a (package (version "1") (source (origin (uri (crate-uri "a" version))))))`
	noisy := `
	; header
	( define-public   a ;; name
	  (package
	    (version "1") ; inline
	    (source
	      (origin
	        (uri (crate-uri
	               "a"
	               version)))))
	) ; done
	`

	want, err := ParseString(plain)
	require.NoError(t, err)
	got, err := ParseString(noisy)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "node %d differs: %s", i, ast.Encode(got[i]))
	}
}

func TestParserFormFeed(t *testing.T) {
	testCases := []struct {
		In  string
		Out string
	}{
		{"a\fb", `a b`},
		{"(a\f\"b\")\f", `(a "b")`},
		{"\f; comment\n\f(a)", `(a)`},
	}

	for _, tc := range testCases {
		nodes, err := ParseString(tc.In)
		require.NoError(t, err, "%q", tc.In)
		assert.Equal(t, tc.Out, string(ast.Encode(nodes...)), "%q", tc.In)
	}
}

func TestParserStringEscapes(t *testing.T) {
	nodes, err := ParseString(`"a\"b"`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	assert.Equal(t, ast.NodeTypeString, nodes[0].Type())
	text, ok := nodes[0].Text()
	assert.True(t, ok)
	assert.Equal(t, `a\"b`, text)
}

func TestParserNesting(t *testing.T) {
	for n := 0; n <= 200; n++ {
		in := strings.Repeat("(", n) + strings.Repeat(")", n)

		nodes, err := ParseString(in)
		require.NoError(t, err, "depth %d", n)

		if n == 0 {
			assert.Empty(t, nodes)
			continue
		}

		require.Len(t, nodes, 1)
		depth := 0
		for node := nodes[0]; node != nil; depth++ {
			children, ok := node.List()
			require.True(t, ok)
			if len(children) == 0 {
				node = nil
				continue
			}
			require.Len(t, children, 1)
			node = children[0]
		}
		assert.Equal(t, n, depth)

		if n > 0 {
			_, err := ParseString(in[:len(in)-1])
			assert.True(t, errors.Is(err, ErrUnterminatedList), "depth %d", n)
		}
	}
}

func TestParserMaxDepth(t *testing.T) {
	deep := strings.Repeat("(", DefaultMaxDepth+1) + strings.Repeat(")", DefaultMaxDepth+1)
	_, err := ParseString(deep)
	assert.True(t, errors.Is(err, ErrMaxDepth))

	limit := strings.Repeat("(", DefaultMaxDepth) + strings.Repeat(")", DefaultMaxDepth)
	_, err = ParseString(limit)
	assert.NoError(t, err)

	p := New(strings.NewReader("((a))"))
	p.SetOptions(Options{MaxDepth: 1})
	_, err = p.Parse()
	assert.True(t, errors.Is(err, ErrMaxDepth))

	p = New(strings.NewReader("''a"))
	p.SetOptions(Options{MaxDepth: 1})
	_, err = p.Parse()
	assert.True(t, errors.Is(err, ErrMaxDepth))

	p = New(strings.NewReader("(a)"))
	p.SetOptions(Options{MaxDepth: 1})
	nodes, err := p.Parse()
	assert.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestParserQuoteDiscard(t *testing.T) {
	quoted, err := ParseString(`'foo`)
	require.NoError(t, err)
	plain, err := ParseString(`foo`)
	require.NoError(t, err)

	require.Len(t, quoted, 1)
	require.Len(t, plain, 1)
	assert.True(t, quoted[0].Equal(plain[0]))
	assert.Equal(t, ast.NodeTypeSymbol, quoted[0].Type())
}

func TestParserEncodeRoundTrip(t *testing.T) {
	in := "(a \"b\\\"c\" ;x\n (d 'e) `(f))"

	first, err := ParseString(in)
	require.NoError(t, err)

	second, err := Parse(ast.Encode(first...))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]))
	}
}

func TestParserPositions(t *testing.T) {
	nodes, err := ParseString("\n  (foo \"bar\")")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	assert.Equal(t, 2, nodes[0].Pos().Line)
	assert.Equal(t, 3, nodes[0].Pos().Col)

	children, _ := nodes[0].List()
	require.Len(t, children, 2)
	assert.Equal(t, 4, children[0].Pos().Col)
	assert.Equal(t, 8, children[1].Pos().Col)
}
