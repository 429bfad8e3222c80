package query

import "strings"

// SearchExpression is a node of a parsed $search expression tree.
type SearchExpression interface {
	searchExpr()
}

// SearchOperator joins two search expressions.
type SearchOperator string

const (
	SearchAnd SearchOperator = "AND"
	SearchOr  SearchOperator = "OR"
)

// SearchTerm is a word or quoted phrase that must appear in the text.
type SearchTerm struct {
	Term string
}

func (*SearchTerm) searchExpr() {}

// SearchBinary combines two expressions with AND or OR.
type SearchBinary struct {
	Operator SearchOperator
	Left     SearchExpression
	Right    SearchExpression
}

func (*SearchBinary) searchExpr() {}

// SearchUnary negates its operand (NOT).
type SearchUnary struct {
	Operand SearchExpression
}

func (*SearchUnary) searchExpr() {}

// ParseSearch parses an OData $search string into an expression tree.
// The grammar follows OData v4 §11.2.5.6:
//
//	searchExpr  = orExpr
//	orExpr      = andExpr ("OR" andExpr)*
//	andExpr     = notExpr ("AND" notExpr | notExpr)*   // implicit AND between adjacent terms
//	notExpr     = "NOT" notExpr | primary
//	primary     = DQUOTE phrase DQUOTE | "(" orExpr ")" | term
//
// The parser is lenient: dangling keywords degrade to terms rather than
// errors. An empty query yields nil.
func ParseSearch(query string) SearchExpression {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	p := &searchParser{tokens: tokenizeSearch(query)}
	node := p.parseOr()
	if node == nil {
		return nil
	}
	return node
}

// --- tokenizer ---------------------------------------------------------------

type searchTokType int

const (
	sTokEOF    searchTokType = iota
	sTokTerm                 // any word that is not a keyword
	sTokPhrase               // "quoted phrase"
	sTokAND
	sTokOR
	sTokNOT
	sTokLParen
	sTokRParen
)

type searchTok struct {
	typ  searchTokType
	text string
}

func tokenizeSearch(input string) []searchTok {
	runes := []rune(input)
	n := len(runes)
	var toks []searchTok
	i := 0

	for i < n {
		for i < n && runes[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}

		switch runes[i] {
		case '(':
			toks = append(toks, searchTok{typ: sTokLParen})
			i++
		case ')':
			toks = append(toks, searchTok{typ: sTokRParen})
			i++
		case '"':
			i++
			start := i
			for i < n && runes[i] != '"' {
				i++
			}
			phrase := string(runes[start:i])
			if i < n {
				i++
			}
			toks = append(toks, searchTok{typ: sTokPhrase, text: phrase})
		default:
			start := i
			for i < n && runes[i] != ' ' && runes[i] != '(' && runes[i] != ')' && runes[i] != '"' {
				i++
			}
			word := string(runes[start:i])
			switch word {
			case "AND":
				toks = append(toks, searchTok{typ: sTokAND, text: word})
			case "OR":
				toks = append(toks, searchTok{typ: sTokOR, text: word})
			case "NOT":
				toks = append(toks, searchTok{typ: sTokNOT, text: word})
			default:
				toks = append(toks, searchTok{typ: sTokTerm, text: word})
			}
		}
	}

	return append(toks, searchTok{typ: sTokEOF})
}

// --- recursive descent parser ------------------------------------------------

type searchParser struct {
	tokens []searchTok
	pos    int
}

func (p *searchParser) peek() searchTok {
	if p.pos >= len(p.tokens) {
		return searchTok{typ: sTokEOF}
	}
	return p.tokens[p.pos]
}

func (p *searchParser) consume() searchTok {
	tok := p.peek()
	if tok.typ != sTokEOF {
		p.pos++
	}
	return tok
}

// parseOr handles:  andExpr ("OR" andExpr)*
func (p *searchParser) parseOr() SearchExpression {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.peek().typ == sTokOR {
		p.consume()
		right := p.parseAnd()
		if right == nil {
			// trailing OR is searched for literally
			left = &SearchBinary{Operator: SearchAnd, Left: left, Right: &SearchTerm{Term: "OR"}}
			break
		}
		left = &SearchBinary{Operator: SearchOr, Left: left, Right: right}
	}
	return left
}

// parseAnd handles:  notExpr ("AND" notExpr | notExpr)*
func (p *searchParser) parseAnd() SearchExpression {
	left := p.parseNot()
	if left == nil {
		return nil
	}
	for {
		tok := p.peek()
		if tok.typ == sTokAND {
			p.consume()
			right := p.parseNot()
			if right == nil {
				left = &SearchBinary{Operator: SearchAnd, Left: left, Right: &SearchTerm{Term: "AND"}}
				break
			}
			left = &SearchBinary{Operator: SearchAnd, Left: left, Right: right}
		} else if tok.typ == sTokTerm || tok.typ == sTokPhrase || tok.typ == sTokNOT || tok.typ == sTokLParen {
			right := p.parseNot()
			if right == nil {
				break
			}
			left = &SearchBinary{Operator: SearchAnd, Left: left, Right: right}
		} else {
			break
		}
	}
	return left
}

// parseNot handles:  "NOT" notExpr | primary
func (p *searchParser) parseNot() SearchExpression {
	if p.peek().typ == sTokNOT {
		p.consume()
		operand := p.parseNot()
		if operand == nil {
			return &SearchTerm{Term: "NOT"}
		}
		return &SearchUnary{Operand: operand}
	}
	return p.parsePrimary()
}

// parsePrimary handles: DQUOTE phrase DQUOTE | "(" orExpr ")" | term
func (p *searchParser) parsePrimary() SearchExpression {
	tok := p.peek()
	switch tok.typ {
	case sTokPhrase, sTokTerm:
		p.consume()
		return &SearchTerm{Term: tok.text}
	case sTokLParen:
		p.consume()
		inner := p.parseOr()
		if p.peek().typ == sTokRParen {
			p.consume()
		}
		return inner
	default:
		return nil
	}
}
