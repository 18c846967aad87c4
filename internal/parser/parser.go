// Package parser turns a token stream into a spanned AST via recursive
// descent with precedence climbing for expressions.
package parser

import (
	"fmt"

	"github.com/lapis-lang/lapis/internal/ast"
	"github.com/lapis-lang/lapis/internal/diag"
	"github.com/lapis-lang/lapis/internal/lexer"
	"github.com/lapis-lang/lapis/internal/sourcemap"
	"github.com/lapis-lang/lapis/internal/token"
)

// DefaultMaxErrors is the parser error cap used when the caller doesn't
// need a different limit (matches the CLI's default -max-errors).
const DefaultMaxErrors = 20

// Parser consumes a flat token slice and produces a Program, collecting up
// to a caller-supplied number of diagnostics rather than stopping at the
// first parse error.
type Parser struct {
	sm     *sourcemap.SourceMap
	path   string
	tokens []token.Token
	current int

	templateExprCounter int
}

// New creates a Parser over tokens. path and sm are needed to re-lex and
// re-parse template literal expression regions.
func New(sm *sourcemap.SourceMap, path string, tokens []token.Token) *Parser {
	return &Parser{sm: sm, path: path, tokens: tokens}
}

// Parse scans every top-level declaration, synchronizing after each parse
// error and continuing until EOF or maxErrors diagnostics have
// accumulated. It always returns the statements it did manage to parse.
func (p *Parser) Parse(maxErrors int) (*ast.Program, []*diag.Diagnostic) {
	var statements []ast.Stmt
	var errs []*diag.Diagnostic

	for !p.atEnd() {
		if p.check(token.NEWLINE) || p.check(token.TAB) {
			p.advance()
			continue
		}

		stmt, err := p.declaration()
		if err != nil {
			d, ok := err.(*diag.Diagnostic)
			if !ok {
				d = diag.InternalErrorDiag(err.Error())
			}
			errs = append(errs, d)
			if len(errs) >= maxErrors {
				break
			}
			p.synchronize()
			continue
		}
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}

	return &ast.Program{Statements: statements}, errs
}

// ParseExpression parses a single expression and requires it to consume
// every remaining token. Used to re-parse a template literal's captured
// expression source.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, diag.ExpectedTokenError(p.peek().Span, "end of expression", p.peek().Lexeme)
	}
	return expr, nil
}

// ---- declarations ----

func (p *Parser) declaration() (stmt ast.Stmt, err error) {
	switch {
	case p.match(token.PACKAGE):
		return p.packageStatement()
	case p.match(token.VAR):
		return p.varDeclaration(ast.Private)
	case p.match(token.FUNC):
		return p.functionDeclaration(ast.Private)
	case p.match(token.CLASS):
		return p.classDeclaration(ast.Private)
	case p.match(token.PUBLIC):
		return p.accessModifiedDeclaration(ast.Public)
	case p.match(token.PRIVATE):
		return p.accessModifiedDeclaration(ast.Private)
	default:
		return p.statement()
	}
}

func (p *Parser) accessModifiedDeclaration(modifier ast.AccessModifier) (ast.Stmt, error) {
	switch {
	case p.match(token.VAR):
		return p.varDeclaration(modifier)
	case p.match(token.FUNC):
		return p.functionDeclaration(modifier)
	case p.match(token.CLASS):
		return p.classDeclaration(modifier)
	default:
		return nil, diag.ExpectedStatementError(p.peek().Span)
	}
}

func (p *Parser) packageStatement() (ast.Stmt, error) {
	start := p.previous().Span
	pathTok, err := p.consume(token.STRING, "string path")
	if err != nil {
		return nil, err
	}
	importPath := pathTok.Literal.(string)

	var imports []string
	if p.match(token.USE) {
		name, err := p.consume(token.IDENTIFIER, "identifier")
		if err != nil {
			return nil, err
		}
		imports = append(imports, name.Literal.(string))
		for p.match(token.COMMA) {
			name, err := p.consume(token.IDENTIFIER, "identifier")
			if err != nil {
				return nil, err
			}
			imports = append(imports, name.Literal.(string))
		}
	}

	end, err := p.consume(token.SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return ast.NewPackageStmt(sourcemap.Cover(start, end.Span), importPath, imports), nil
}

func (p *Parser) varDeclaration(modifier ast.AccessModifier) (ast.Stmt, error) {
	start := p.previous().Span
	name, err := p.consume(token.IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}

	var initializer ast.Expr
	if p.match(token.ASSIGN) {
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	end, err := p.consume(token.SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return ast.NewVarStmt(sourcemap.Cover(start, end.Span), name.Literal.(string), initializer, modifier), nil
}

// parseParamList parses a parenthesized parameter list, enforcing that a
// '**'-suffixed variadic parameter is the last one.
func (p *Parser) parseParamList() (params []string, variadic string, err error) {
	if _, err = p.consume(token.LEFT_PAREN, "'('"); err != nil {
		return nil, "", err
	}
	if !p.check(token.RIGHT_PAREN) {
		name, err := p.consume(token.IDENTIFIER, "parameter name")
		if err != nil {
			return nil, "", err
		}
		if p.match(token.POWER) {
			variadic = name.Literal.(string)
		} else {
			params = append(params, name.Literal.(string))
		}

		for p.match(token.COMMA) {
			if variadic != "" {
				return nil, "", diag.VariadicNotLastError(p.peek().Span)
			}
			name, err := p.consume(token.IDENTIFIER, "parameter name")
			if err != nil {
				return nil, "", err
			}
			if p.match(token.POWER) {
				variadic = name.Literal.(string)
			} else {
				params = append(params, name.Literal.(string))
			}
		}
	}
	if _, err = p.consume(token.RIGHT_PAREN, "')'"); err != nil {
		return nil, "", err
	}
	return params, variadic, nil
}

func (p *Parser) skipBlankLines() {
	for p.match(token.NEWLINE) || p.match(token.TAB) {
	}
}

func (p *Parser) functionDeclaration(modifier ast.AccessModifier) (ast.Stmt, error) {
	start := p.previous().Span
	name, err := p.consume(token.IDENTIFIER, "function name")
	if err != nil {
		return nil, err
	}

	params, variadic, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	p.skipBlankLines()

	body, err := p.parseDeclarationsUntil(token.END)
	if err != nil {
		return nil, err
	}
	end, err := p.consume(token.END, "'end'")
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionStmt(sourcemap.Cover(start, end.Span), name.Literal.(string), params, variadic, body, modifier), nil
}

// parseDeclarationsUntil collects declarations (skipping blank lines) until
// the current token is stop or EOF.
func (p *Parser) parseDeclarationsUntil(stop token.Kind) ([]ast.Stmt, error) {
	var body []ast.Stmt
	for !p.check(stop) && !p.atEnd() {
		if p.check(token.NEWLINE) || p.check(token.TAB) {
			p.advance()
			continue
		}
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	return body, nil
}

func (p *Parser) parseDeclarationsUntilAny(stops ...token.Kind) ([]ast.Stmt, error) {
	var body []ast.Stmt
	for !p.checkAny(stops...) && !p.atEnd() {
		if p.check(token.NEWLINE) || p.check(token.TAB) {
			p.advance()
			continue
		}
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	return body, nil
}

func (p *Parser) classDeclaration(modifier ast.AccessModifier) (ast.Stmt, error) {
	start := p.previous().Span
	name, err := p.consume(token.IDENTIFIER, "class name")
	if err != nil {
		return nil, err
	}

	if p.match(token.LEFT_PAREN) {
		if _, err := p.consume(token.RIGHT_PAREN, "')'"); err != nil {
			return nil, err
		}
	}
	p.skipBlankLines()

	var methods []*ast.FunctionStmt
	var constructor *ast.FunctionStmt

	for !p.check(token.END) && !p.atEnd() {
		if p.check(token.NEWLINE) || p.check(token.TAB) {
			p.advance()
			continue
		}
		if !p.match(token.FUNC) {
			return nil, diag.ExpectedStatementError(p.peek().Span)
		}

		methodStart := p.previous().Span
		var methodName string
		if p.check(token.INIT) {
			p.advance()
			methodName = "init"
		} else {
			ident, err := p.consume(token.IDENTIFIER, "method name")
			if err != nil {
				return nil, err
			}
			methodName = ident.Literal.(string)
		}

		params, variadic, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		p.skipBlankLines()

		body, err := p.parseDeclarationsUntil(token.END)
		if err != nil {
			return nil, err
		}
		methodEnd, err := p.consume(token.END, "'end'")
		if err != nil {
			return nil, err
		}

		method := ast.NewFunctionStmt(sourcemap.Cover(methodStart, methodEnd.Span), methodName, params, variadic, body, ast.Public)
		if methodName == "init" {
			constructor = method
		} else {
			methods = append(methods, method)
		}
	}

	end, err := p.consume(token.END, "'end'")
	if err != nil {
		return nil, err
	}
	return ast.NewClassStmt(sourcemap.Cover(start, end.Span), name.Literal.(string), constructor, methods, modifier), nil
}

// ---- statements ----

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.BREAK):
		return p.breakStatement()
	case p.match(token.CONTINUE):
		return p.continueStatement()
	case p.match(token.TRY):
		return p.tryStatement()
	case p.match(token.SWITCH):
		return p.switchStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) statementBlockUntil(stops ...token.Kind) (*ast.BlockStmt, error) {
	start := p.peek().Span
	statements, err := p.parseDeclarationsUntilAny(stops...)
	if err != nil {
		return nil, err
	}
	end := start
	if len(statements) > 0 {
		end = statements[len(statements)-1].Span()
	}
	return ast.NewBlockStmt(sourcemap.Cover(start, end), statements), nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	start := p.previous().Span
	if _, err := p.consume(token.LEFT_PAREN, "'('"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "')'"); err != nil {
		return nil, err
	}
	p.skipBlankLines()

	thenBranch, err := p.statementBlockUntil(token.ELIF, token.ELSE, token.END)
	if err != nil {
		return nil, err
	}

	var elifBranches []ast.ElifBranch
	for p.match(token.ELIF) {
		if _, err := p.consume(token.LEFT_PAREN, "'('"); err != nil {
			return nil, err
		}
		elifCondition, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RIGHT_PAREN, "')'"); err != nil {
			return nil, err
		}
		p.skipBlankLines()

		elifBody, err := p.statementBlockUntil(token.ELIF, token.ELSE, token.END)
		if err != nil {
			return nil, err
		}
		elifBranches = append(elifBranches, ast.ElifBranch{Condition: elifCondition, Body: elifBody})
	}

	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		p.skipBlankLines()
		elseBranch, err = p.statementBlockUntil(token.END)
		if err != nil {
			return nil, err
		}
	}

	end, err := p.consume(token.END, "'end'")
	if err != nil {
		return nil, err
	}
	return ast.NewIfStmt(sourcemap.Cover(start, end.Span), condition, thenBranch, elifBranches, elseBranch), nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	start := p.previous().Span
	if _, err := p.consume(token.LEFT_PAREN, "'('"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "')'"); err != nil {
		return nil, err
	}
	p.skipBlankLines()

	body, err := p.statementBlockUntil(token.END)
	if err != nil {
		return nil, err
	}
	end, err := p.consume(token.END, "'end'")
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStmt(sourcemap.Cover(start, end.Span), condition, body), nil
}

func (p *Parser) forStatement() (ast.Stmt, error) {
	start := p.previous().Span
	name, err := p.consume(token.IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.IN, "'in'"); err != nil {
		return nil, err
	}
	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.skipBlankLines()

	body, err := p.statementBlockUntil(token.END)
	if err != nil {
		return nil, err
	}
	end, err := p.consume(token.END, "'end'")
	if err != nil {
		return nil, err
	}
	return ast.NewForStmt(sourcemap.Cover(start, end.Span), name.Literal.(string), iterable, body), nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	start := p.previous().Span
	var value ast.Expr
	if !p.check(token.SEMICOLON) && !p.check(token.NEWLINE) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	end, err := p.consume(token.SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return ast.NewReturnStmt(sourcemap.Cover(start, end.Span), value), nil
}

func (p *Parser) breakStatement() (ast.Stmt, error) {
	start := p.previous().Span
	end, err := p.consume(token.SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return ast.NewBreakStmt(sourcemap.Cover(start, end.Span)), nil
}

func (p *Parser) continueStatement() (ast.Stmt, error) {
	start := p.previous().Span
	end, err := p.consume(token.SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return ast.NewContinueStmt(sourcemap.Cover(start, end.Span)), nil
}

func (p *Parser) tryStatement() (ast.Stmt, error) {
	start := p.previous().Span
	p.skipBlankLines()

	tryBody, err := p.parseDeclarationsUntilAny(token.CATCH, token.FINALLY, token.END)
	if err != nil {
		return nil, err
	}

	var catchClauses []ast.CatchClause
	for p.match(token.CATCH) {
		var variable string
		if p.match(token.LEFT_PAREN) {
			name, err := p.consume(token.IDENTIFIER, "variable name")
			if err != nil {
				return nil, err
			}
			variable = name.Literal.(string)
			if _, err := p.consume(token.RIGHT_PAREN, "')'"); err != nil {
				return nil, err
			}
		}
		p.skipBlankLines()

		catchBody, err := p.parseDeclarationsUntilAny(token.CATCH, token.FINALLY, token.END)
		if err != nil {
			return nil, err
		}
		catchClauses = append(catchClauses, ast.CatchClause{Variable: variable, Body: catchBody})
	}

	var finallyBody []ast.Stmt
	if p.match(token.FINALLY) {
		p.skipBlankLines()
		finallyBody, err = p.parseDeclarationsUntil(token.END)
		if err != nil {
			return nil, err
		}
	}

	end, err := p.consume(token.END, "'end'")
	if err != nil {
		return nil, err
	}
	return ast.NewTryStmt(sourcemap.Cover(start, end.Span), tryBody, catchClauses, finallyBody), nil
}

func (p *Parser) switchStatement() (ast.Stmt, error) {
	start := p.previous().Span
	if _, err := p.consume(token.LEFT_PAREN, "'('"); err != nil {
		return nil, err
	}
	expression, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "')'"); err != nil {
		return nil, err
	}
	p.skipBlankLines()

	var cases []ast.CaseClause
	for (p.check(token.CASE) || p.check(token.DEFAULT)) && !p.atEnd() {
		switch {
		case p.match(token.CASE):
			var values []ast.Expr
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			for p.match(token.COMMA) {
				v, err := p.expression()
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
			if _, err := p.consume(token.COLON, "':'"); err != nil {
				return nil, err
			}
			p.skipBlankLines()

			body, err := p.parseDeclarationsUntilAny(token.CASE, token.DEFAULT, token.END)
			if err != nil {
				return nil, err
			}
			cases = append(cases, ast.CaseClause{Values: values, Body: body})

		case p.match(token.DEFAULT):
			if _, err := p.consume(token.COLON, "':'"); err != nil {
				return nil, err
			}
			p.skipBlankLines()

			body, err := p.parseDeclarationsUntilAny(token.CASE, token.DEFAULT, token.END)
			if err != nil {
				return nil, err
			}
			cases = append(cases, ast.CaseClause{Body: body, IsDefault: true})
		}
	}

	end, err := p.consume(token.END, "'end'")
	if err != nil {
		return nil, err
	}
	return ast.NewSwitchStmt(sourcemap.Cover(start, end.Span), expression, cases), nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	end, err := p.consume(token.SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return ast.NewExpressionStmt(sourcemap.Cover(expr.Span(), end.Span), expr), nil
}

// ---- expressions (precedence climbing) ----

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.logicalOr()
	if err != nil {
		return nil, err
	}

	if p.match(token.ASSIGN) {
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		span := sourcemap.Cover(expr.Span(), value.Span())

		switch e := expr.(type) {
		case *ast.IdentifierExpr:
			return ast.NewAssignmentExpr(span, e.Name, value), nil
		case *ast.GetExpr:
			return ast.NewSetExpr(span, e.Object, e.Name, value), nil
		case *ast.IndexExpr:
			return ast.NewIndexSetExpr(span, e.Object, e.Index, value), nil
		default:
			return nil, diag.InvalidAssignmentTargetError(expr.Span())
		}
	}

	return expr, nil
}

func (p *Parser) logicalOr() (ast.Expr, error) {
	expr, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.OR) {
		operator := p.previous().Lexeme
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpr(sourcemap.Cover(expr.Span(), right.Span()), expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) logicalAnd() (ast.Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.AND) {
		operator := p.previous().Lexeme
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpr(sourcemap.Cover(expr.Span(), right.Span()), expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.match(token.NOT_EQUAL, token.EQUAL) {
		operator := p.previous().Lexeme
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpr(sourcemap.Cover(expr.Span(), right.Span()), expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) comparison() (ast.Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.match(token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL) {
		operator := p.previous().Lexeme
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpr(sourcemap.Cover(expr.Span(), right.Span()), expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) term() (ast.Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.match(token.MINUS, token.PLUS) {
		operator := p.previous().Lexeme
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpr(sourcemap.Cover(expr.Span(), right.Span()), expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) factor() (ast.Expr, error) {
	expr, err := p.power()
	if err != nil {
		return nil, err
	}
	for p.match(token.DIVIDE, token.MULTIPLY, token.MODULO) {
		operator := p.previous().Lexeme
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpr(sourcemap.Cover(expr.Span(), right.Span()), expr, operator, right)
	}
	return expr, nil
}

// power is right-associative: a ** b ** c parses as a ** (b ** c).
func (p *Parser) power() (ast.Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	if p.match(token.POWER) {
		operator := p.previous().Lexeme
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpr(sourcemap.Cover(expr.Span(), right.Span()), expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.NOT, token.MINUS) {
		start := p.previous().Span
		operator := p.previous().Lexeme
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(sourcemap.Cover(start, operand.Span()), operator, operand), nil
	}
	return p.postfix()
}

func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.call()
	if err != nil {
		return nil, err
	}
	if p.match(token.PLUS_PLUS, token.MINUS_MINUS) {
		operator := p.previous().Lexeme
		return ast.NewPostfixExpr(sourcemap.Cover(expr.Span(), p.previous().Span), expr, operator), nil
	}
	return expr, nil
}

func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(token.DOT):
			name, err := p.consume(token.IDENTIFIER, "property name")
			if err != nil {
				return nil, err
			}
			expr = ast.NewGetExpr(sourcemap.Cover(expr.Span(), name.Span), expr, name.Literal.(string))
		case p.match(token.LEFT_BRACKET):
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			closeBracket, err := p.consume(token.RIGHT_BRACKET, "']'")
			if err != nil {
				return nil, err
			}
			expr = ast.NewIndexExpr(sourcemap.Cover(expr.Span(), closeBracket.Span), expr, index)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var arguments []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, arg)
		for p.match(token.COMMA) {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			arguments = append(arguments, arg)
		}
	}
	closeParen, err := p.consume(token.RIGHT_PAREN, "')'")
	if err != nil {
		return nil, err
	}
	return ast.NewCallExpr(sourcemap.Cover(callee.Span(), closeParen.Span), callee, arguments), nil
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.TRUE):
		return ast.NewLiteralExpr(p.previous().Span, true), nil
	case p.match(token.FALSE):
		return ast.NewLiteralExpr(p.previous().Span, false), nil
	case p.match(token.NULL):
		return ast.NewLiteralExpr(p.previous().Span, nil), nil
	case p.match(token.NUMBER):
		tok := p.previous()
		return ast.NewLiteralExpr(tok.Span, tok.Literal), nil
	case p.match(token.STRING):
		tok := p.previous()
		return ast.NewLiteralExpr(tok.Span, tok.Literal), nil
	case p.match(token.TEMPLATE_LITERAL):
		return p.templateLiteralExpr()
	case p.match(token.THIS):
		return ast.NewThisExpr(p.previous().Span), nil
	case p.match(token.IDENTIFIER):
		tok := p.previous()
		return ast.NewIdentifierExpr(tok.Span, tok.Literal.(string)), nil
	case p.match(token.LEFT_PAREN):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RIGHT_PAREN, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case p.match(token.LEFT_BRACKET):
		return p.arrayLiteral()
	case p.match(token.LEFT_BRACE):
		return p.dictionaryLiteral()
	default:
		return nil, diag.ExpectedExpressionError(p.peek().Span)
	}
}

func (p *Parser) arrayLiteral() (ast.Expr, error) {
	start := p.previous().Span
	var elements []ast.Expr
	if !p.check(token.RIGHT_BRACKET) {
		elem, err := p.expression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
		for p.match(token.COMMA) {
			elem, err := p.expression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
		}
	}
	end, err := p.consume(token.RIGHT_BRACKET, "']'")
	if err != nil {
		return nil, err
	}
	return ast.NewArrayExpr(sourcemap.Cover(start, end.Span), elements), nil
}

func (p *Parser) dictionaryLiteral() (ast.Expr, error) {
	start := p.previous().Span
	p.skipBlankLines()

	var pairs []ast.DictPair
	if !p.check(token.RIGHT_BRACE) {
		key, err := p.dictionaryKey()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COLON, "':'"); err != nil {
			return nil, err
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ast.DictPair{Key: key, Value: value})
		p.skipBlankLines()

		for p.match(token.COMMA) {
			p.skipBlankLines()
			if p.check(token.RIGHT_BRACE) {
				break
			}
			key, err := p.dictionaryKey()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.COLON, "':'"); err != nil {
				return nil, err
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, ast.DictPair{Key: key, Value: value})
			p.skipBlankLines()
		}
	}
	p.skipBlankLines()

	end, err := p.consume(token.RIGHT_BRACE, "'}'")
	if err != nil {
		return nil, err
	}
	return ast.NewDictionaryExpr(sourcemap.Cover(start, end.Span), pairs), nil
}

// dictionaryKey accepts a bare identifier as a string literal key
// (JavaScript-style {key: value}), else parses a full expression so quoted
// or computed keys also work.
func (p *Parser) dictionaryKey() (ast.Expr, error) {
	if p.check(token.IDENTIFIER) {
		tok := p.advance()
		return ast.NewLiteralExpr(tok.Span, tok.Literal.(string)), nil
	}
	return p.expression()
}

// templateLiteralExpr re-lexes and re-parses each captured expression
// region of a template literal's raw token.TemplatePart slice into a fully
// parsed ast.TemplatePart.
func (p *Parser) templateLiteralExpr() (ast.Expr, error) {
	tok := p.previous()
	rawParts := tok.Literal.([]token.TemplatePart)

	parts := make([]ast.TemplatePart, 0, len(rawParts))
	for _, raw := range rawParts {
		if raw.ExprSource == "" {
			parts = append(parts, ast.TemplatePart{Text: raw.Text})
			continue
		}
		expr, err := p.parseEmbeddedExpression(raw.ExprSource)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.TemplatePart{Expr: expr})
	}
	return ast.NewTemplateLiteralExpr(tok.Span, parts), nil
}

func (p *Parser) parseEmbeddedExpression(source string) (ast.Expr, error) {
	p.templateExprCounter++
	syntheticPath := fmt.Sprintf("%s#template-expr-%d", p.path, p.templateExprCounter)

	l := lexer.New(p.sm, syntheticPath, source)
	toks, err := l.Tokenize()
	if err != nil {
		return nil, err
	}

	sub := New(p.sm, syntheticPath, toks)
	return sub.ParseExpression()
}

// ---- token stream utilities ----

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(k token.Kind) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Kind == k
}

func (p *Parser) checkAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) consume(kind token.Kind, what string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, diag.ExpectedTokenError(p.peek().Span, what, p.peek().Lexeme)
}

// synchronize discards tokens until it finds a likely statement boundary,
// so a single parse error doesn't cascade into a wall of follow-on errors.
func (p *Parser) synchronize() {
	p.advance()

	for !p.atEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.peek().Kind {
		case token.CLASS, token.FUNC, token.VAR, token.FOR, token.IF, token.WHILE, token.RETURN:
			return
		}
		p.advance()
	}
}
