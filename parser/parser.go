package parser

import (
	"fmt"
	"strconv"
)

// prefixParseFn parses an expression that starts with the current token.
type prefixParseFn func() Expr

// infixParseFn parses an expression continuing from an already-parsed left
// operand, with curToken positioned on the infix operator.
type infixParseFn func(left Expr) Expr

// Parser is a combined Pratt expression parser and recursive-descent
// statement parser, built directly over the Lexer's token stream — the
// same two-cursor (cur, peek) shape a hand-written descent parser uses to
// decide "is this the start of X" one token ahead of where it commits.
type Parser struct {
	lex *Lexer

	curToken  Token
	peekToken Token

	errors *ErrorList
	table  *SymbolTable

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

// New creates a Parser reading from lex. The returned parser owns a fresh
// symbol table; call Symbols after ParseProgram to retrieve it.
func New(lex *Lexer) *Parser {
	p := &Parser{
		lex:    lex,
		errors: &ErrorList{},
		table:  NewSymbolTable(),
	}

	p.prefixFns = map[TokenType]prefixParseFn{
		TokenInt:          p.parseIntegerLiteral,
		TokenIdent:        p.parseIdentifier,
		TokenLParen:       p.parseGroupedExpression,
		TokenDraw:         p.parseDrawExpr,
		TokenDrawNum:      p.parseDrawNumExpr,
		TokenDrawChar:     p.parseDrawCharExpr,
		TokenPressed:      p.parsePressedExpr,
		TokenNotPressed:   p.parseNotPressedExpr,
		TokenUntilPressed: p.parseUntilPressedExpr,
	}

	p.infixFns = map[TokenType]infixParseFn{
		TokenPlus:  p.parseInfixExpr,
		TokenMinus: p.parseInfixExpr,
		TokenStar:  p.parseInfixExpr,
		TokenSlash: p.parseInfixExpr,
		TokenEq:    p.parseInfixExpr,
		TokenNotEq: p.parseInfixExpr,
	}

	// Two calls to prime curToken and peekToken, mirroring the standard
	// two-token-lookahead Pratt parser setup.
	p.next()
	p.next()

	return p
}

// Errors returns every diagnostic collected while parsing.
func (p *Parser) Errors() *ErrorList { return p.errors }

// Symbols returns the symbol table built as a side effect of parsing.
func (p *Parser) Symbols() *SymbolTable { return p.table }

// SetMaxSpriteRows overrides the sprite row ceiling enforced while
// parsing sprite declarations (config.Compiler.MaxSpriteRows). Call it
// before ParseProgram.
func (p *Parser) SetMaxSpriteRows(n int) { p.table.SetMaxSpriteRows(n) }

func (p *Parser) next() {
	p.curToken = p.peekToken
	tok, err := p.lex.NextToken()
	if err != nil {
		p.errors.Add(err)
	}
	p.peekToken = tok
}

func (p *Parser) curIs(t TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t TokenType) bool { return p.peekToken.Type == t }

// expect advances past the current token if it matches t, else records a
// syntax error and leaves the cursor in place so the caller can still make
// forward progress.
func (p *Parser) expect(t TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf(p.curToken.Pos, "expected %s, found %s", t, p.curToken.Type)
	return false
}

func (p *Parser) errorf(pos Position, format string, args ...interface{}) {
	p.errors.Add(NewError(pos, ErrorSyntax, fmt.Sprintf(format, args...)))
}

func (p *Parser) semanticErrorf(pos Position, format string, args ...interface{}) {
	p.errors.Add(NewError(pos, ErrorSemantic, fmt.Sprintf(format, args...)))
}

// ParseProgram parses the entire token stream into a Program. Parsing
// continues past statement-level errors so a single pass can collect more
// than one diagnostic, but the compiler facade still refuses to generate
// code when ErrorList.HasErrors() is true — there is no partial ROM.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{}

	for !p.curIs(TokenEOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else {
			// parseStatement already recorded an error; advance so we do
			// not spin forever on the same token.
			p.next()
		}
	}

	return prog
}

// --- Statements ---

func (p *Parser) parseStatement() Stmt {
	switch p.curToken.Type {
	case TokenVar:
		return p.parseIntegerDeclaration()
	case TokenSprite:
		return p.parseSpriteDeclaration()
	case TokenClear:
		return p.parseClearStmt()
	case TokenIf:
		return p.parseIfStmt()
	case TokenWhile:
		return p.parseWhileStmt()
	case TokenLBrace:
		return p.parseBlockStmt()
	default:
		return p.parseExpressionStmt()
	}
}

func (p *Parser) parseIntegerDeclaration() Stmt {
	tok := p.curToken
	p.next() // consume 'var'

	if !p.curIs(TokenIdent) {
		p.errorf(p.curToken.Pos, "expected identifier after 'var', found %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	p.next()

	if !p.expect(TokenAssign) {
		return nil
	}

	value := p.parseExpression(LOWEST)
	if !p.expect(TokenSemicolon) {
		return nil
	}

	if err := p.table.DeclareInteger(name); err != nil {
		p.errors.Add(err.(*Error))
	}

	return &IntegerDeclaration{Tok: tok, Name: name, Value: value}
}

func (p *Parser) parseSpriteDeclaration() Stmt {
	tok := p.curToken
	p.next() // consume 'sprite'

	if !p.curIs(TokenIdent) {
		p.errorf(p.curToken.Pos, "expected identifier after 'sprite', found %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	p.next()

	if !p.expect(TokenAssign) {
		return nil
	}
	if !p.expect(TokenLBrace) {
		return nil
	}

	var rows []uint8
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		rowTok := p.curToken
		if !p.curIs(TokenInt) {
			p.errorf(rowTok.Pos, "expected sprite row literal, found %s", p.curToken.Type)
			return nil
		}
		row := p.parseRowLiteral(rowTok)
		rows = append(rows, row)
		p.next()

		if p.curIs(TokenComma) {
			p.next()
		}
	}

	if !p.expect(TokenRBrace) {
		return nil
	}
	if !p.expect(TokenSemicolon) {
		return nil
	}

	if err := p.table.DeclareSprite(name, len(rows)); err != nil {
		p.errors.Add(err.(*Error))
	}

	return &SpriteDeclaration{Tok: tok, Name: name, Rows: rows}
}

// parseRowLiteral parses a single sprite row, accepting both decimal and
// 0b-prefixed binary forms, and enforces the 0..255 byte range.
func (p *Parser) parseRowLiteral(tok Token) uint8 {
	val, err := parseIntLiteral(tok.Literal)
	if err != nil || val > 255 {
		p.semanticErrorf(tok.Pos, "sprite row %q out of range for a byte", tok.Literal)
		return 0
	}
	return uint8(val)
}

func (p *Parser) parseClearStmt() Stmt {
	tok := p.curToken
	p.next()
	if !p.expect(TokenSemicolon) {
		return nil
	}
	return &ClearStmt{Tok: tok}
}

func (p *Parser) parseIfStmt() Stmt {
	tok := p.curToken
	p.next() // consume 'if'

	if !p.expect(TokenLParen) {
		return nil
	}
	cond := p.parseExpression(LOWEST)
	if !p.expect(TokenRParen) {
		return nil
	}

	then, ok := p.parseBlockStmt().(*BlockStmt)
	if !ok {
		return nil
	}

	var elseBlock *BlockStmt
	if p.curIs(TokenElse) {
		p.next()
		elseBlock, ok = p.parseBlockStmt().(*BlockStmt)
		if !ok {
			return nil
		}
	}

	return &IfStmt{Tok: tok, Cond: cond, Then: then, Else: elseBlock}
}

func (p *Parser) parseWhileStmt() Stmt {
	tok := p.curToken
	p.next() // consume 'while'

	if !p.expect(TokenLParen) {
		return nil
	}
	cond := p.parseExpression(LOWEST)
	if !p.expect(TokenRParen) {
		return nil
	}

	body, ok := p.parseBlockStmt().(*BlockStmt)
	if !ok {
		return nil
	}

	return &WhileStmt{Tok: tok, Cond: cond, Body: body}
}

func (p *Parser) parseBlockStmt() Stmt {
	tok := p.curToken
	if !p.expect(TokenLBrace) {
		return nil
	}

	block := &BlockStmt{Tok: tok}
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.next()
		}
	}

	if !p.expect(TokenRBrace) {
		return nil
	}
	return block
}

func (p *Parser) parseExpressionStmt() Stmt {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if !p.expect(TokenSemicolon) {
		return nil
	}
	return &ExpressionStmt{Tok: tok, Expr: expr}
}

// --- Expressions ---

func (p *Parser) parseExpression(precedence int) Expr {
	prefix, ok := p.prefixFns[p.curToken.Type]
	if !ok {
		p.errorf(p.curToken.Pos, "unexpected token %s in expression", p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.curIs(TokenSemicolon) && precedence < peekPrecedence(p.curToken.Type) {
		infix, ok := p.infixFns[p.curToken.Type]
		if !ok {
			return left
		}
		left = infix(left)
	}

	return left
}

func (p *Parser) parseIntegerLiteral() Expr {
	tok := p.curToken
	val, err := parseIntLiteral(tok.Literal)
	if err != nil || val > 255 {
		p.semanticErrorf(tok.Pos, "integer literal %q out of range for a byte", tok.Literal)
		val = 0
	}
	p.next()
	return &IntegerLiteral{Tok: tok, Value: uint8(val)}
}

func (p *Parser) parseIdentifier() Expr {
	tok := p.curToken
	if err := p.table.CheckSymbol(tok.Literal); err != nil {
		p.errors.Add(err.(*Error))
	}
	p.next()
	return &Identifier{Tok: tok, Name: tok.Literal}
}

func (p *Parser) parseGroupedExpression() Expr {
	p.next() // consume '('
	expr := p.parseExpression(LOWEST)
	p.expect(TokenRParen)
	return expr
}

func (p *Parser) parseInfixExpr(left Expr) Expr {
	tok := p.curToken
	op := infixOps[tok.Type]
	prec := peekPrecedence(tok.Type)
	p.next()
	right := p.parseExpression(prec)
	return &InfixExpr{Tok: tok, Op: op, Left: left, Right: right}
}

// parseDrawXY parses the trailing ", x, y" arguments shared by draw,
// draw_num and draw_char, after the caller has parsed the first argument.
func (p *Parser) parseDrawXY() (x, y Expr, ok bool) {
	if !p.expect(TokenComma) {
		return nil, nil, false
	}
	x = p.parseExpression(LOWEST)
	if !p.expect(TokenComma) {
		return nil, nil, false
	}
	y = p.parseExpression(LOWEST)
	return x, y, true
}

func (p *Parser) parseDrawExpr() Expr {
	tok := p.curToken
	p.next() // consume 'draw'
	if !p.expect(TokenLParen) {
		return nil
	}

	if !p.curIs(TokenIdent) {
		p.errorf(p.curToken.Pos, "expected sprite name, found %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	if err := p.table.CheckSymbol(name); err != nil {
		p.errors.Add(err.(*Error))
	} else if kind, _ := p.table.KindOf(name); kind != SymbolSprite {
		p.semanticErrorf(p.curToken.Pos, "'%s' is not a sprite", name)
	}
	p.next()

	x, y, ok := p.parseDrawXY()
	if !ok {
		return nil
	}
	if !p.expect(TokenRParen) {
		return nil
	}

	return &DrawExpr{Tok: tok, Name: name, X: x, Y: y}
}

func (p *Parser) parseDrawNumExpr() Expr {
	tok := p.curToken
	p.next() // consume 'draw_num'
	if !p.expect(TokenLParen) {
		return nil
	}

	value := p.parseExpression(LOWEST)
	x, y, ok := p.parseDrawXY()
	if !ok {
		return nil
	}
	if !p.expect(TokenRParen) {
		return nil
	}

	return &DrawNumExpr{Tok: tok, Value: value, X: x, Y: y}
}

func (p *Parser) parseDrawCharExpr() Expr {
	tok := p.curToken
	p.next() // consume 'draw_char'
	if !p.expect(TokenLParen) {
		return nil
	}

	value := p.parseExpression(LOWEST)
	x, y, ok := p.parseDrawXY()
	if !ok {
		return nil
	}
	if !p.expect(TokenRParen) {
		return nil
	}

	return &DrawCharExpr{Tok: tok, Value: value, X: x, Y: y}
}

func (p *Parser) parseKeyExpr() Expr {
	p.next() // consume keyword
	if !p.expect(TokenLParen) {
		return nil
	}
	key := p.parseExpression(LOWEST)
	if !p.expect(TokenRParen) {
		return nil
	}
	return key
}

func (p *Parser) parsePressedExpr() Expr {
	tok := p.curToken
	key := p.parseKeyExpr()
	return &PressedExpr{Tok: tok, Key: key}
}

func (p *Parser) parseNotPressedExpr() Expr {
	tok := p.curToken
	key := p.parseKeyExpr()
	return &NotPressedExpr{Tok: tok, Key: key}
}

func (p *Parser) parseUntilPressedExpr() Expr {
	tok := p.curToken
	key := p.parseKeyExpr()
	return &UntilPressedExpr{Tok: tok, Key: key}
}

// parseIntLiteral accepts both decimal and 0b-prefixed binary forms.
func parseIntLiteral(literal string) (int64, error) {
	if len(literal) > 1 && (literal[1] == 'b' || literal[1] == 'B') && literal[0] == '0' {
		return strconv.ParseInt(literal[2:], 2, 64)
	}
	return strconv.ParseInt(literal, 10, 64)
}
