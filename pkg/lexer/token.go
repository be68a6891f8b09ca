package lexer

import "strings"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent  // x, count
	TokenNumber // 42

	// Keywords
	TokenConst     // const
	TokenVar       // var
	TokenProcedure // procedure
	TokenCall      // call
	TokenBegin     // begin
	TokenEnd       // end
	TokenIf        // if
	TokenThen      // then
	TokenElse      // else
	TokenWhile     // while
	TokenDo        // do
	TokenFor       // for
	TokenTo        // to
	TokenBy        // by
	TokenOdd       // odd
	TokenPrint     // ! print
	TokenRead      // ? read

	// Operators
	TokenPlus    // +
	TokenMinus   // -
	TokenTimes   // *
	TokenSlash   // /
	TokenEql     // =
	TokenNeq     // != #
	TokenLss     // <
	TokenLeq     // <=
	TokenGtr     // >
	TokenGeq     // >=
	TokenBecomes // :=

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenColon     // :
	TokenSemicolon // ;
	TokenComma     // ,
	TokenPeriod    // .
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenIllegal:   "ILLEGAL",
	TokenIdent:     "IDENT",
	TokenNumber:    "NUMBER",
	TokenConst:     "const",
	TokenVar:       "var",
	TokenProcedure: "procedure",
	TokenCall:      "call",
	TokenBegin:     "begin",
	TokenEnd:       "end",
	TokenIf:        "if",
	TokenThen:      "then",
	TokenElse:      "else",
	TokenWhile:     "while",
	TokenDo:        "do",
	TokenFor:       "for",
	TokenTo:        "to",
	TokenBy:        "by",
	TokenOdd:       "odd",
	TokenPrint:     "print",
	TokenRead:      "read",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenTimes:     "*",
	TokenSlash:     "/",
	TokenEql:       "=",
	TokenNeq:       "!=",
	TokenLss:       "<",
	TokenLeq:       "<=",
	TokenGtr:       ">",
	TokenGeq:       ">=",
	TokenBecomes:   ":=",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenColon:     ":",
	TokenSemicolon: ";",
	TokenComma:     ",",
	TokenPeriod:    ".",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Operator names used in the IR for arithmetic and comparison tokens
var operatorNames = map[TokenType]string{
	TokenPlus:  "plus",
	TokenMinus: "minus",
	TokenTimes: "times",
	TokenSlash: "slash",
	TokenEql:   "eql",
	TokenNeq:   "neq",
	TokenLss:   "lss",
	TokenLeq:   "leq",
	TokenGtr:   "gtr",
	TokenGeq:   "geq",
	TokenOdd:   "odd",
}

// OperatorName returns the IR operator name of t, or "" if t is not an operator
func (t TokenType) OperatorName() string {
	return operatorNames[t]
}

// IsRelational reports whether t compares two expressions
func (t TokenType) IsRelational() bool {
	switch t {
	case TokenEql, TokenNeq, TokenLss, TokenLeq, TokenGtr, TokenGeq:
		return true
	}
	return false
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// keywords maps keyword strings to token types
var keywords = map[string]TokenType{
	"const":     TokenConst,
	"var":       TokenVar,
	"procedure": TokenProcedure,
	"call":      TokenCall,
	"begin":     TokenBegin,
	"end":       TokenEnd,
	"if":        TokenIf,
	"then":      TokenThen,
	"else":      TokenElse,
	"while":     TokenWhile,
	"do":        TokenDo,
	"for":       TokenFor,
	"to":        TokenTo,
	"by":        TokenBy,
	"odd":       TokenOdd,
	"print":     TokenPrint,
	"read":      TokenRead,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT).
// Keywords are case-insensitive.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return TokenIdent
}
