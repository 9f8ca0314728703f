package lexer

// CharClass represents the lexical role of a single character.
type CharClass uint8

// List of character classes
const (
	CharInvalid     CharClass = iota
	CharOpenList              // Open parenthesis: "("
	CharCloseList             // Close parenthesis: ")"
	CharDoubleQuote           // Double quote: '"'
	CharBackslash             // Backslash: "\"
	CharSemicolon             // Comment start: ";"
	CharNewLine               // Newline: "\n"
	CharQuote                 // Quote prefix: "'" or "`"
	CharWhitespace            // Space, tab, carriage return or form feed: \s\t\r\f
	CharSymbol                // Anything else
)

var charValues = map[CharClass][]rune{
	CharOpenList:    {'('},
	CharCloseList:   {')'},
	CharDoubleQuote: {'"'},
	CharBackslash:   {'\\'},
	CharSemicolon:   {';'},
	CharNewLine:     {'\n'},
	CharQuote:       {'\'', '`'},
	CharWhitespace:  []rune(" \t\r\f"),
}

var charNames = map[CharClass]string{
	CharInvalid:     "invalid",
	CharOpenList:    "open_list",
	CharCloseList:   "close_list",
	CharDoubleQuote: "double_quote",
	CharBackslash:   "backslash",
	CharSemicolon:   "semicolon",
	CharNewLine:     "newline",
	CharQuote:       "quote",
	CharWhitespace:  "whitespace",
	CharSymbol:      "symbol",
}

func (cc CharClass) String() string {
	if v, ok := charNames[cc]; ok {
		return v
	}
	return charNames[CharInvalid]
}

var (
	IsOpenList    = isCharClass(CharOpenList)
	IsCloseList   = isCharClass(CharCloseList)
	IsDoubleQuote = isCharClass(CharDoubleQuote)
	IsBackslash   = isCharClass(CharBackslash)
	IsSemicolon   = isCharClass(CharSemicolon)
	IsNewLine     = isCharClass(CharNewLine)
	IsQuote       = isCharClass(CharQuote)
)

var isSeparator = isCharClass(CharWhitespace)

// IsWhitespace returns true for characters skipped between nodes, newline
// included.
func IsWhitespace(r rune) bool {
	return IsNewLine(r) || isSeparator(r)
}

// IsSymbol returns true if r may appear anywhere in a symbol.
func IsSymbol(r rune) bool {
	return Classify(r) == CharSymbol
}

// Classify returns the class of r within a symbol run. Backslash and
// semicolon classify as CharSymbol: a semicolon only opens a comment where a
// node could begin.
func Classify(r rune) CharClass {
	switch {
	case r == EOF:
		return CharInvalid
	case IsOpenList(r):
		return CharOpenList
	case IsCloseList(r):
		return CharCloseList
	case IsDoubleQuote(r):
		return CharDoubleQuote
	case IsQuote(r):
		return CharQuote
	case IsNewLine(r):
		return CharNewLine
	case isSeparator(r):
		return CharWhitespace
	}
	return CharSymbol
}

func isCharClass(cc CharClass) func(r rune) bool {
	values := charValues[cc]
	return func(r rune) bool {
		for _, v := range values {
			if v == r {
				return true
			}
		}
		return false
	}
}
