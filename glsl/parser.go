package glsl

import (
	"strconv"
	"strings"
)

// Parser builds a typed-ish AST from a macro-expanded, directive-free
// token stream. Full type/qualifier resolution and the loop/call
// validation rules of spec.md §4.2 are performed afterwards by Analyzer;
// the Parser itself only builds syntax and records the qualifier/type
// keywords it sees verbatim, matching the two-phase split the teacher uses
// between wgsl.Parser (syntax) and the lowering pass that follows it.
type Parser struct {
	tokens []Token
	pos    int
	diags  *Diagnostics
}

// NewParser creates a Parser over tokens (already preprocessed).
func NewParser(tokens []Token, diags *Diagnostics) *Parser {
	return &Parser{tokens: tokens, diags: diags}
}

func (p *Parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokenEOF}
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return Token{Kind: TokenEOF}
}

func (p *Parser) next() Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) check(k TokenKind) bool { return p.peek().Kind == k }

func (p *Parser) accept(k TokenKind) (Token, bool) {
	if p.check(k) {
		return p.next(), true
	}
	return Token{}, false
}

func (p *Parser) expect(k TokenKind, what string) Token {
	if t, ok := p.accept(k); ok {
		return t
	}
	t := p.peek()
	p.diags.Errorf(t.Loc, "expected %s, got %q", what, t.Text)
	return t
}

func (p *Parser) errf(loc Location, format string, args ...any) {
	p.diags.Errorf(loc, format, args...)
}

// ParseTranslationUnit parses a complete shader stage.
func (p *Parser) ParseTranslationUnit(stage ShaderStage) *TranslationUnit {
	tu := &TranslationUnit{Stage: stage}
	for !p.check(TokenEOF) {
		p.parseExternalDecl(tu)
	}
	return tu
}

func (p *Parser) parseExternalDecl(tu *TranslationUnit) {
	if p.check(TokenPrecision) {
		p.next()
		p.next() // precision keyword
		p.next() // type keyword
		p.expect(TokenSemicolon, "';'")
		return
	}

	qual, prec, ty, ok := p.parseTypeSpecifier()
	if !ok {
		// Resynchronize on parse failure: skip to the next statement
		// boundary so one malformed declaration does not cascade.
		for !p.check(TokenEOF) && !p.check(TokenSemicolon) && !p.check(TokenRightBrace) {
			p.next()
		}
		p.accept(TokenSemicolon)
		return
	}

	if ty.Basic == TyStruct && p.check(TokenSemicolon) {
		// Struct-only declaration: `struct Foo { ... };`
		p.next()
		return
	}

	name := p.expect(TokenIdent, "identifier")

	if p.check(TokenLeftParen) {
		fn := p.parseFunctionRest(name, ty)
		tu.Functions = append(tu.Functions, fn)
		return
	}

	decl := p.parseVarDeclRest(name, qual, prec, ty)
	tu.Globals = append(tu.Globals, decl)
	for p.check(TokenComma) {
		p.next()
		n2 := p.expect(TokenIdent, "identifier")
		tu.Globals = append(tu.Globals, p.parseVarDeclRest(n2, qual, prec, ty))
	}
	p.expect(TokenSemicolon, "';'")
}

// parseTypeSpecifier consumes an optional layout(...), qualifiers,
// optional precision, then a type name (including `struct { ... }`).
func (p *Parser) parseTypeSpecifier() (Qualifier, Precision, ValueType, bool) {
	layoutSeen := false
	_ = layoutSeen
	var qual Qualifier
	var prec Precision

	for {
		if p.check(TokenLayout) {
			p.next()
			p.expect(TokenLeftParen, "'('")
			for !p.check(TokenRightParen) && !p.check(TokenEOF) {
				p.next()
			}
			p.expect(TokenRightParen, "')'")
			continue
		}
		if q, ok := qualifierForKeyword(p.peek().Kind); ok {
			qual = q
			p.next()
			continue
		}
		break
	}
	if pr, ok := precisionForKeyword(p.peek().Kind); ok {
		prec = pr
		p.next()
	}

	if p.check(TokenStruct) {
		sd := p.parseStructDecl()
		return qual, prec, ValueType{Basic: TyStruct, VectorSize: 1, StructName: sd.Name}, true
	}

	if vt, ok := typeForKeyword(p.peek().Kind); ok {
		p.next()
		vt.Precision = prec
		vt.Qualifier = qual
		return qual, prec, vt, true
	}
	if p.check(TokenIdent) {
		// A user struct type name used as a declarator.
		name := p.next().Text
		return qual, prec, ValueType{Basic: TyStruct, VectorSize: 1, StructName: name, Precision: prec, Qualifier: qual}, true
	}
	return qual, prec, ValueType{}, false
}

func (p *Parser) parseStructDecl() *StructDecl {
	at := p.next().Loc // 'struct'
	name := ""
	if p.check(TokenIdent) {
		name = p.next().Text
	}
	sd := &StructDecl{Name: name, At: at}
	p.expect(TokenLeftBrace, "'{'")
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		_, _, ty, ok := p.parseTypeSpecifier()
		if !ok {
			p.next()
			continue
		}
		fname := p.expect(TokenIdent, "identifier")
		vd := p.parseVarDeclRest(fname, QualNone, PrecisionDefault, ty)
		sd.Members = append(sd.Members, vd)
		for p.check(TokenComma) {
			p.next()
			f2 := p.expect(TokenIdent, "identifier")
			sd.Members = append(sd.Members, p.parseVarDeclRest(f2, QualNone, PrecisionDefault, ty))
		}
		p.expect(TokenSemicolon, "';'")
	}
	p.expect(TokenRightBrace, "'}'")
	return sd
}

// parseVarDeclRest parses the `[array] [= init]` tail of a declarator whose
// name and base type are already known.
func (p *Parser) parseVarDeclRest(name Token, qual Qualifier, prec Precision, ty ValueType) *VarDecl {
	vd := &VarDecl{Name: name.Text, Type: ty, Qualifier: qual, At: name.Loc}
	vd.Type.Qualifier = qual
	vd.Type.Precision = prec
	if p.check(TokenLeftBracket) {
		p.next()
		if !p.check(TokenRightBracket) {
			n := p.parseConstIntExpr()
			vd.Type.ArrayLen = uint32(n)
		}
		p.expect(TokenRightBracket, "']'")
	}
	if p.check(TokenEqual) {
		p.next()
		vd.Init = p.parseAssignment()
	}
	return vd
}

func (p *Parser) parseConstIntExpr() int64 {
	e := p.parseTernary()
	if lit, ok := e.(*LiteralExpr); ok {
		return lit.Int
	}
	p.errf(e.Loc(), "expected a constant integer expression")
	return 0
}

func (p *Parser) parseFunctionRest(name Token, ret ValueType) *FuncDecl {
	fn := &FuncDecl{Name: name.Text, Return: ret, At: name.Loc}
	p.expect(TokenLeftParen, "'('")
	if p.check(TokenVoid) && p.peekN(1).Kind == TokenRightParen {
		p.next()
	} else {
		for !p.check(TokenRightParen) && !p.check(TokenEOF) {
			_, _, ty, ok := p.parseTypeSpecifier()
			if !ok {
				p.next()
				continue
			}
			pname := ""
			var at Location
			if t, ok := p.accept(TokenIdent); ok {
				pname = t.Text
				at = t.Loc
			}
			fn.Params = append(fn.Params, &VarDecl{Name: pname, Type: ty, Qualifier: ty.Qualifier, At: at})
			if p.check(TokenComma) {
				p.next()
				continue
			}
			break
		}
	}
	p.expect(TokenRightParen, "')'")
	if p.check(TokenLeftBrace) {
		fn.Body = p.parseBlock()
	} else {
		p.expect(TokenSemicolon, "';'")
	}
	return fn
}

func (p *Parser) parseBlock() *BlockStmt {
	at := p.expect(TokenLeftBrace, "'{'").Loc
	b := &BlockStmt{stmtBase: stmtBase{at}}
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		b.Stmts = append(b.Stmts, p.parseStatement())
	}
	p.expect(TokenRightBrace, "'}'")
	return b
}

func (p *Parser) parseStatement() Stmt {
	switch p.peek().Kind {
	case TokenLeftBrace:
		return p.parseBlock()
	case TokenIf:
		return p.parseIf()
	case TokenFor:
		return p.parseFor()
	case TokenWhile:
		return p.parseWhile()
	case TokenDo:
		return p.parseDoWhile()
	case TokenBreak, TokenContinue, TokenDiscard, TokenReturn:
		return p.parseBranch()
	case TokenSemicolon:
		at := p.next().Loc
		return &BlockStmt{stmtBase: stmtBase{at}}
	default:
		if p.startsDeclaration() {
			return p.parseDeclStmt()
		}
		at := p.peek().Loc
		x := p.parseExpression()
		p.expect(TokenSemicolon, "';'")
		return &ExprStmt{stmtBase{at}, x}
	}
}

func (p *Parser) startsDeclaration() bool {
	k := p.peek().Kind
	if k == TokenConst || k == TokenLayout || k == TokenPrecision {
		return true
	}
	if _, ok := qualifierForKeyword(k); ok {
		return true
	}
	if _, ok := precisionForKeyword(k); ok {
		return true
	}
	if _, ok := typeForKeyword(k); ok {
		return true
	}
	if k == TokenStruct {
		return true
	}
	return false
}

func (p *Parser) parseDeclStmt() Stmt {
	at := p.peek().Loc
	qual, prec, ty, ok := p.parseTypeSpecifier()
	stmt := &DeclStmt{stmtBase: stmtBase{at}}
	if !ok {
		for !p.check(TokenEOF) && !p.check(TokenSemicolon) {
			p.next()
		}
		p.accept(TokenSemicolon)
		return stmt
	}
	name := p.expect(TokenIdent, "identifier")
	stmt.Decls = append(stmt.Decls, p.parseVarDeclRest(name, qual, prec, ty))
	for p.check(TokenComma) {
		p.next()
		n2 := p.expect(TokenIdent, "identifier")
		stmt.Decls = append(stmt.Decls, p.parseVarDeclRest(n2, qual, prec, ty))
	}
	p.expect(TokenSemicolon, "';'")
	return stmt
}

func (p *Parser) parseIf() Stmt {
	at := p.next().Loc
	p.expect(TokenLeftParen, "'('")
	cond := p.parseExpression()
	p.expect(TokenRightParen, "')'")
	then := p.parseStatement()
	var els Stmt
	if p.check(TokenElse) {
		p.next()
		els = p.parseStatement()
	}
	return &IfStmt{stmtBase{at}, cond, then, els}
}

func (p *Parser) parseFor() Stmt {
	at := p.next().Loc
	p.expect(TokenLeftParen, "'('")
	var init Stmt
	if !p.check(TokenSemicolon) {
		if p.startsDeclaration() {
			init = p.parseDeclStmt()
		} else {
			x := p.parseExpression()
			init = &ExprStmt{stmtBase{at}, x}
			p.expect(TokenSemicolon, "';'")
		}
	} else {
		p.next()
	}
	var cond Expr
	if !p.check(TokenSemicolon) {
		cond = p.parseExpression()
	}
	p.expect(TokenSemicolon, "';'")
	var post Expr
	if !p.check(TokenRightParen) {
		post = p.parseExpression()
	}
	p.expect(TokenRightParen, "')'")
	body := p.parseStatement()
	return &LoopStmt{stmtBase: stmtBase{at}, Kind: LoopFor, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseWhile() Stmt {
	at := p.next().Loc
	p.expect(TokenLeftParen, "'('")
	cond := p.parseExpression()
	p.expect(TokenRightParen, "')'")
	body := p.parseStatement()
	return &LoopStmt{stmtBase: stmtBase{at}, Kind: LoopWhile, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() Stmt {
	at := p.next().Loc
	body := p.parseStatement()
	p.expect(TokenWhile, "'while'")
	p.expect(TokenLeftParen, "'('")
	cond := p.parseExpression()
	p.expect(TokenRightParen, "')'")
	p.expect(TokenSemicolon, "';'")
	return &LoopStmt{stmtBase: stmtBase{at}, Kind: LoopDoWhile, Cond: cond, Body: body}
}

func (p *Parser) parseBranch() Stmt {
	t := p.next()
	var kind BranchKind
	switch t.Kind {
	case TokenBreak:
		kind = BranchBreak
	case TokenContinue:
		kind = BranchContinue
	case TokenDiscard:
		kind = BranchDiscard
	case TokenReturn:
		kind = BranchReturn
	}
	var val Expr
	if kind == BranchReturn && !p.check(TokenSemicolon) {
		val = p.parseExpression()
	}
	p.expect(TokenSemicolon, "';'")
	return &BranchStmt{stmtBase{t.Loc}, kind, val}
}

// --- Expressions, precedence climbing, lowest to highest. ---

func (p *Parser) parseExpression() Expr {
	e := p.parseAssignment()
	for p.check(TokenComma) {
		op := p.next()
		rhs := p.parseAssignment()
		e = &BinaryExpr{exprBase{At: op.Loc}, TokenComma, e, rhs}
	}
	return e
}

var assignOps = map[TokenKind]bool{
	TokenEqual: true, TokenPlusEqual: true, TokenMinusEqual: true,
	TokenStarEqual: true, TokenSlashEqual: true, TokenPercentEqual: true,
	TokenAmpEqual: true, TokenPipeEqual: true, TokenCaretEqual: true,
	TokenLessLessEqual: true, TokenGreaterGreaterEqual: true,
}

func (p *Parser) parseAssignment() Expr {
	lhs := p.parseTernary()
	if assignOps[p.peek().Kind] {
		op := p.next()
		rhs := p.parseAssignment()
		return &BinaryExpr{exprBase{At: op.Loc}, op.Kind, lhs, rhs}
	}
	return lhs
}

func (p *Parser) parseTernary() Expr {
	cond := p.parseLogicalOr()
	if p.check(TokenQuestion) {
		at := p.next().Loc
		then := p.parseAssignment()
		p.expect(TokenColon, "':'")
		els := p.parseAssignment()
		return &SelectionExpr{exprBase{At: at}, cond, then, els}
	}
	return cond
}

func (p *Parser) binaryLevel(next func() Expr, ops ...TokenKind) Expr {
	e := next()
	for {
		matched := false
		for _, op := range ops {
			if p.peek().Kind == op {
				t := p.next()
				rhs := next()
				e = &BinaryExpr{exprBase{At: t.Loc}, op, e, rhs}
				matched = true
				break
			}
		}
		if !matched {
			return e
		}
	}
}

func (p *Parser) parseLogicalOr() Expr {
	return p.binaryLevel(p.parseLogicalAnd, TokenPipePipe)
}
func (p *Parser) parseLogicalAnd() Expr {
	return p.binaryLevel(p.parseLogicalXor, TokenAmpAmp)
}
func (p *Parser) parseLogicalXor() Expr {
	return p.binaryLevel(p.parseBitOr, TokenCaretCaret)
}
func (p *Parser) parseBitOr() Expr { return p.binaryLevel(p.parseBitXor, TokenPipe) }
func (p *Parser) parseBitXor() Expr { return p.binaryLevel(p.parseBitAnd, TokenCaret) }
func (p *Parser) parseBitAnd() Expr { return p.binaryLevel(p.parseEquality, TokenAmpersand) }
func (p *Parser) parseEquality() Expr {
	return p.binaryLevel(p.parseRelational, TokenEqualEqual, TokenBangEqual)
}
func (p *Parser) parseRelational() Expr {
	return p.binaryLevel(p.parseShift, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual)
}
func (p *Parser) parseShift() Expr {
	return p.binaryLevel(p.parseAdditive, TokenLessLess, TokenGreaterGreater)
}
func (p *Parser) parseAdditive() Expr {
	return p.binaryLevel(p.parseMultiplicative, TokenPlus, TokenMinus)
}
func (p *Parser) parseMultiplicative() Expr {
	return p.binaryLevel(p.parseUnary, TokenStar, TokenSlash, TokenPercent)
}

func (p *Parser) parseUnary() Expr {
	switch p.peek().Kind {
	case TokenPlus, TokenMinus, TokenBang, TokenTilde, TokenPlusPlus, TokenMinusMinus:
		op := p.next()
		operand := p.parseUnary()
		return &UnaryExpr{exprBase{At: op.Loc}, op.Kind, false, operand}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() Expr {
	e := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case TokenDot:
			p.next()
			field := p.expect(TokenIdent, "field or swizzle")
			e = &FieldExpr{exprBase{At: field.Loc}, e, field.Text}
		case TokenLeftBracket:
			at := p.next().Loc
			idx := p.parseExpression()
			p.expect(TokenRightBracket, "']'")
			ix := &IndexExpr{exprBase: exprBase{At: at}, Base: e, Index: idx}
			if lit, ok := idx.(*LiteralExpr); ok {
				v := lit.Int
				ix.ConstIndex = &v
			}
			e = ix
		case TokenPlusPlus, TokenMinusMinus:
			op := p.next()
			e = &UnaryExpr{exprBase{At: op.Loc}, op.Kind, true, e}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() Expr {
	t := p.peek()
	switch t.Kind {
	case TokenIntLiteral:
		p.next()
		n, _ := strconv.ParseInt(strings.TrimRight(t.Text, "uU"), 0, 64)
		return &LiteralExpr{exprBase: exprBase{At: t.Loc, Ty: Scalar(TyInt)}, Int: n}
	case TokenFloatLiteral:
		p.next()
		f, _ := strconv.ParseFloat(strings.TrimRight(t.Text, "fF"), 64)
		return &LiteralExpr{exprBase: exprBase{At: t.Loc, Ty: Scalar(TyFloat)}, Float: f}
	case TokenBoolLiteral:
		p.next()
		return &LiteralExpr{exprBase: exprBase{At: t.Loc, Ty: Scalar(TyBool)}, Bool: t.Text == "true"}
	case TokenLeftParen:
		p.next()
		e := p.parseExpression()
		p.expect(TokenRightParen, "')'")
		return e
	case TokenIdent:
		p.next()
		if vt, ok := typeForKeyword(t.Kind); ok {
			_ = vt
		}
		if p.check(TokenLeftParen) {
			return p.parseCall(t)
		}
		return &SymbolExpr{exprBase: exprBase{At: t.Loc}, Name: t.Text}
	default:
		if vt, ok := typeForKeyword(t.Kind); ok {
			p.next()
			if p.check(TokenLeftParen) {
				call := p.parseCall(t)
				call.(*CallExpr).exprBase.Ty = vt
				return call
			}
			return &SymbolExpr{exprBase: exprBase{At: t.Loc}, Name: t.Text}
		}
		p.errf(t.Loc, "unexpected token %q in expression", t.Text)
		p.next()
		return &LiteralExpr{exprBase: exprBase{At: t.Loc}}
	}
}

func (p *Parser) parseCall(name Token) Expr {
	p.expect(TokenLeftParen, "'('")
	var args []Expr
	if !p.check(TokenRightParen) {
		args = append(args, p.parseAssignment())
		for p.check(TokenComma) {
			p.next()
			args = append(args, p.parseAssignment())
		}
	}
	p.expect(TokenRightParen, "')'")
	return &CallExpr{exprBase: exprBase{At: name.Loc}, Callee: name.Text, Args: args}
}
