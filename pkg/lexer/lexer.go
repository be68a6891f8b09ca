// Package lexer tokenizes PL/0 source code
package lexer

// Lexer tokenizes PL/0 source code
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		tok.Literal = ""
	case '+':
		tok = l.newToken(TokenPlus, l.ch)
	case '-':
		tok = l.newToken(TokenMinus, l.ch)
	case '*':
		tok = l.newToken(TokenTimes, l.ch)
	case '/':
		tok = l.newToken(TokenSlash, l.ch)
	case '=':
		tok = l.newToken(TokenEql, l.ch)
	case '#':
		tok = l.newToken(TokenNeq, l.ch)
	case '!':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(TokenNeq)
		} else {
			tok = l.newToken(TokenPrint, l.ch)
		}
	case '?':
		tok = l.newToken(TokenRead, l.ch)
	case '<':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(TokenLeq)
		} else {
			tok = l.newToken(TokenLss, l.ch)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(TokenGeq)
		} else {
			tok = l.newToken(TokenGtr, l.ch)
		}
	case ':':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(TokenBecomes)
		} else {
			tok = l.newToken(TokenColon, l.ch)
		}
	case '(':
		tok = l.newToken(TokenLParen, l.ch)
	case ')':
		tok = l.newToken(TokenRParen, l.ch)
	case '[':
		tok = l.newToken(TokenLBracket, l.ch)
	case ']':
		tok = l.newToken(TokenRBracket, l.ch)
	case ';':
		tok = l.newToken(TokenSemicolon, l.ch)
	case ',':
		tok = l.newToken(TokenComma, l.ch)
	case '.':
		tok = l.newToken(TokenPeriod, l.ch)
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			tok.Type = TokenNumber
			tok.Literal = l.readNumber()
			return tok
		} else {
			tok = l.newToken(TokenIllegal, l.ch)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

func (l *Lexer) twoCharToken(tokenType TokenType) Token {
	tok := Token{Type: tokenType, Line: l.line, Column: l.column}
	first := l.ch
	l.readChar()
	tok.Literal = string([]byte{first, l.ch})
	return tok
}

// Comments are enclosed in braces and do not nest.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '{':
			for l.ch != '}' && l.ch != 0 {
				l.readChar()
			}
			if l.ch == '}' {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

func (l *Lexer) readNumber() string {
	pos := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// Tokens scans the whole input, EOF token included
func (l *Lexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
