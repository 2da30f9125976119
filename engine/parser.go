package engine

import (
	"strconv"
	"strings"

	"github.com/squigglygo/squiggly/types"
)

// baseViewName is the well-known view whose fields other views
// implicitly fold in, and that PropertyAddNonAnnotatedFieldsToBaseView
// (applied by whatever ViewSource is configured, not by the parser)
// collects unassigned fields into.
const baseViewName = "base"

// ViewOptions controls how a Parser expands a resolved view's field
// list, mirroring Config's FilterImplicitlyIncludeBaseFieldsInView and
// FilterPropagateViewToNestedFilters.
type ViewOptions struct {
	// ImplicitlyIncludeBaseFields unions the "base" view's fields into
	// any other view's expansion, base fields first.
	ImplicitlyIncludeBaseFields bool
	// PropagateToNestedFilters restricts a nested object that has no
	// filter of its own to the same view fields, recursively, instead
	// of passing it through unfiltered.
	PropagateToNestedFilters bool
}

// Parser is a recursive-descent parser over the filter DSL grammar,
// including key/value functions and the rename production
// (`name:alias`).
type Parser struct {
	lex        *Lexer
	viewSource types.ViewSource
	viewOpts   ViewOptions
	source     string
}

// NewParser returns a Parser over text. viewSource may be nil, in
// which case bare identifiers are never treated as views.
func NewParser(text string, viewSource types.ViewSource, viewOpts ViewOptions) *Parser {
	return &Parser{lex: NewLexer(text), viewSource: viewSource, viewOpts: viewOpts, source: text}
}

// Parse parses text into a Filter using viewSource for view expansion.
func Parse(text string, viewSource types.ViewSource, viewOpts ViewOptions) (*Filter, error) {
	return NewParser(text, viewSource, viewOpts).ParseFilter()
}

// ParseFilter parses the whole filter grammar production and asserts
// that no trailing input remains.
func (p *Parser) ParseFilter() (*Filter, error) {
	if strings.TrimSpace(p.source) == "" {
		return &Filter{Source: p.source}, nil
	}

	nodes, err := p.parseCommaList(nil)
	if err != nil {
		return nil, err
	}

	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokEOF {
		return nil, types.NewSyntaxError(tok.Pos, "unexpected trailing input", TokEOF.String())
	}

	stmts := make([]*Statement, len(nodes))
	for i, n := range nodes {
		stmts[i] = &Statement{Root: n}
	}
	return &Filter{Source: p.source, Statements: stmts}, nil
}

// parseCommaList implements `filter := statement (',' statement)*`
// where a `statement` is exactly one `expression` production, itself
// possibly expanding into several sibling nodes (grouping, view
// expansion).
func (p *Parser) parseCommaList(parent *ExpressionNode) ([]*ExpressionNode, error) {
	var out []*ExpressionNode
	for {
		nodes, err := p.parseExpression(parent)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)

		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokComma {
			break
		}
		p.lex.Next()
	}
	return out, nil
}

// parseExpression implements `expression := ['-'] name ...` and the
// grouped form `['-'] '(' expression (',' expression)* ')' ...`.
func (p *Parser) parseExpression(parent *ExpressionNode) ([]*ExpressionNode, error) {
	negated := false
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokMinus {
		p.lex.Next()
		negated = true
	}

	tok, err = p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokLParen {
		return p.parseGroupExpression(parent, negated)
	}
	return p.parseSimpleExpression(parent, negated)
}

// nameSpec is one raw name production before it becomes an
// ExpressionNode: a literal/wildcard/glob identifier or a regex
// literal.
type nameSpec struct {
	value   string
	isRegex bool
	flags   string
	negated bool
}

func (p *Parser) parseSimpleExpression(parent *ExpressionNode, negated bool) ([]*ExpressionNode, error) {
	spec, err := p.parseNameSpec()
	if err != nil {
		return nil, err
	}

	if !spec.isRegex && p.viewSource != nil {
		if fields, ok := p.viewSource.ResolveView(spec.value); ok {
			fields = p.expandViewFields(spec.value, fields)
			specs := make([]nameSpec, len(fields))
			for i, f := range fields {
				specs[i] = nameSpec{value: f}
			}
			return p.finishSiblings(specs, negated, parent, fields)
		}
	}

	return p.finishSiblings([]nameSpec{spec}, negated, parent, nil)
}

// expandViewFields folds the "base" view's fields into name's own
// resolved fields when ImplicitlyIncludeBaseFields is set and name
// isn't itself the base view, base fields first, de-duplicated by
// name.
func (p *Parser) expandViewFields(name string, fields []string) []string {
	if !p.viewOpts.ImplicitlyIncludeBaseFields || name == baseViewName {
		return fields
	}
	baseFields, ok := p.viewSource.ResolveView(baseViewName)
	if !ok {
		return fields
	}

	seen := make(map[string]bool, len(baseFields)+len(fields))
	out := make([]string, 0, len(baseFields)+len(fields))
	for _, f := range baseFields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (p *Parser) parseGroupExpression(parent *ExpressionNode, groupNegated bool) ([]*ExpressionNode, error) {
	p.lex.Next() // consume '('

	var specs []nameSpec
	for {
		memberNegated := false
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokMinus {
			p.lex.Next()
			memberNegated = true
		}
		spec, err := p.parseNameSpec()
		if err != nil {
			return nil, err
		}
		spec.negated = memberNegated
		specs = append(specs, spec)

		tok, err = p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokComma {
			break
		}
		p.lex.Next()
	}

	closeTok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	if closeTok.Kind != TokRParen {
		return nil, types.NewSyntaxError(closeTok.Pos, "unterminated group", TokRParen.String())
	}

	return p.finishSiblings(specs, groupNegated, parent, nil)
}

// parseNameSpec reads one regex literal, or a maximal run of
// contiguous identifier/wildcard tokens (so `issue*` lexes as IDENT
// "issue" + '*' but parses as the single glob name "issue*").
func (p *Parser) parseNameSpec() (nameSpec, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nameSpec{}, err
	}
	if tok.Kind == TokRegex {
		p.lex.Next()
		return nameSpec{value: tok.Value, isRegex: true, flags: tok.Flags}, nil
	}
	if !isNamePartKind(tok.Kind) {
		return nameSpec{}, types.NewSyntaxError(tok.Pos, "expected a field name, wildcard, or regex literal",
			TokIdent.String(), TokStar.String(), TokDoubleStar.String(), TokQuestion.String(), "regex literal")
	}

	var sb strings.Builder
	nextExpectedPos := tok.Pos
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nameSpec{}, err
		}
		if tok.Pos != nextExpectedPos || !isNamePartKind(tok.Kind) {
			break
		}
		p.lex.Next()
		sb.WriteString(tok.Value)
		nextExpectedPos = tok.Pos + len(tok.Value)
	}
	return nameSpec{value: sb.String()}, nil
}

func isNamePartKind(k TokenKind) bool {
	return k == TokIdent || k == TokStar || k == TokDoubleStar || k == TokQuestion
}

// finishSiblings parses the shared `[':' rename] ['@' funcs] [nested]`
// tail once and applies it to every name in specs, cloning any nested
// children per sibling so parent links stay correct — a parent pointer
// is a relation, never a second ownership path.
//
// viewFields is non-nil exactly when specs came from expanding a view
// reference; when the caller wrote no explicit nested block of their
// own and PropagateToNestedFilters is set, each resulting node is given
// a self-referential nested restriction built from viewFields instead
// of being left to pass its subtree through unfiltered.
func (p *Parser) finishSiblings(specs []nameSpec, groupNegated bool, parent *ExpressionNode, viewFields []string) ([]*ExpressionNode, error) {
	rename, err := p.parseOptionalRename()
	if err != nil {
		return nil, err
	}
	funcs, err := p.parseOptionalFuncs()
	if err != nil {
		return nil, err
	}
	hasNested, squiggly, emptyNested, childTemplate, err := p.parseOptionalNested()
	if err != nil {
		return nil, err
	}

	var propagated []*ExpressionNode
	if !hasNested && viewFields != nil && p.viewOpts.PropagateToNestedFilters {
		propagated, err = buildPropagatedViewChildren(viewFields)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*ExpressionNode, 0, len(specs))
	for _, spec := range specs {
		nodeNegated := groupNegated || spec.negated
		node, err := newExpressionNode(newExpressionNodeOpts{
			name:        spec.value,
			rename:      rename,
			squiggly:    squiggly,
			emptyNested: emptyNested,
			isRegex:     spec.isRegex,
			regexFlags:  spec.flags,
		})
		if err != nil {
			return nil, err
		}
		node.Parent = parent
		if rename != "" {
			node.KeyFunctions = funcs
		} else {
			node.ValueFunctions = funcs
		}
		switch {
		case hasNested:
			node.Children = cloneChildren(childTemplate, node)
			if squiggly {
				node.Negated = nodeNegated
			} else {
				// Dot-sugar: "-a.b.c" desugars to a{b{-c}}, so a leading
				// '-' binds to the chain's terminal segment, not the head.
				negateDotPathTerminal(node, nodeNegated)
			}
		case propagated != nil:
			node.Children = propagated
			node.Negated = nodeNegated
		default:
			node.Negated = nodeNegated
		}
		out = append(out, node)
	}
	return out, nil
}

// negateDotPathTerminal walks node's pure dot-sugar chain — each link
// with exactly one child and no explicit brace/bracket of its own — down
// to the terminal segment and ORs negated into it, leaving any
// negation the terminal already carries from its own '-' untouched.
func negateDotPathTerminal(node *ExpressionNode, negated bool) {
	cur := node
	for len(cur.Children) == 1 && !cur.Squiggly {
		cur = cur.Children[0]
	}
	cur.Negated = cur.Negated || negated
}

// buildPropagatedViewChildren expands fields into sibling
// ExpressionNodes and points each one's Children back at that same
// slice, so a nested object with no filter of its own is restricted to
// the same field set at every depth, not just the first. The resulting
// AST is cyclic, but matchAt's descent is driven by the document path's
// length, which is always finite, so the cycle never causes unbounded
// work.
func buildPropagatedViewChildren(fields []string) ([]*ExpressionNode, error) {
	nodes := make([]*ExpressionNode, len(fields))
	for i, f := range fields {
		n, err := newExpressionNode(newExpressionNodeOpts{name: f})
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	for _, n := range nodes {
		n.Children = nodes
	}
	return nodes, nil
}

// cloneChildren deep-copies a nested-block AST so each sibling produced
// by a group or view expansion gets its own parent chain.
func cloneChildren(children []*ExpressionNode, newParent *ExpressionNode) []*ExpressionNode {
	if children == nil {
		return nil
	}
	out := make([]*ExpressionNode, len(children))
	for i, c := range children {
		clone := *c
		clone.Parent = newParent
		clone.Children = cloneChildren(c.Children, &clone)
		out[i] = &clone
	}
	return out
}

func (p *Parser) parseOptionalRename() (string, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return "", err
	}
	if tok.Kind != TokColon {
		return "", nil
	}
	p.lex.Next()
	tok, err = p.lex.Next()
	if err != nil {
		return "", err
	}
	if tok.Kind != TokIdent {
		return "", types.NewSyntaxError(tok.Pos, "expected identifier after ':'", TokIdent.String())
	}
	return tok.Value, nil
}

// parseOptionalFuncs implements `funcs := func ('.' func)*`, entered
// only once an '@' has been seen. It greedily consumes every following
// `.func`, which is why dot-path nesting sugar cannot follow a function
// chain on the same expression.
func (p *Parser) parseOptionalFuncs() ([]types.FunctionCall, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokAt {
		return nil, nil
	}
	p.lex.Next()

	var calls []types.FunctionCall
	for {
		call, err := p.parseFuncCall()
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)

		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokDot {
			break
		}
		p.lex.Next()
	}
	return calls, nil
}

func (p *Parser) parseFuncCall() (types.FunctionCall, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return types.FunctionCall{}, err
	}
	if tok.Kind != TokIdent {
		return types.FunctionCall{}, types.NewSyntaxError(tok.Pos, "expected function name", TokIdent.String())
	}
	call := types.FunctionCall{Name: tok.Value}

	peek, err := p.lex.Peek()
	if err != nil {
		return types.FunctionCall{}, err
	}
	if peek.Kind != TokLParen {
		return call, nil
	}
	p.lex.Next()

	args, err := p.parseArgs()
	if err != nil {
		return types.FunctionCall{}, err
	}
	call.Arguments = args

	closeTok, err := p.lex.Next()
	if err != nil {
		return types.FunctionCall{}, err
	}
	if closeTok.Kind != TokRParen {
		return types.FunctionCall{}, types.NewSyntaxError(closeTok.Pos, "unterminated argument list", TokRParen.String())
	}
	return call, nil
}

func (p *Parser) parseArgs() ([]types.Argument, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokRParen {
		return nil, nil
	}

	var args []types.Argument
	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokComma {
			break
		}
		p.lex.Next()
	}
	return args, nil
}

func (p *Parser) parseArg() (types.Argument, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return types.Argument{}, err
	}

	switch tok.Kind {
	case TokString:
		p.lex.Next()
		return types.Argument{Kind: types.ArgLiteral, Literal: tok.Value}, nil

	case TokInt:
		p.lex.Next()
		n, _ := strconv.ParseInt(tok.Value, 10, 64)
		return types.Argument{Kind: types.ArgLiteral, Literal: n}, nil

	case TokMinus:
		p.lex.Next()
		numTok, err := p.lex.Next()
		if err != nil {
			return types.Argument{}, err
		}
		if numTok.Kind != TokInt {
			return types.Argument{}, types.NewSyntaxError(numTok.Pos, "expected integer after '-'", TokInt.String())
		}
		n, _ := strconv.ParseInt(numTok.Value, 10, 64)
		return types.Argument{Kind: types.ArgLiteral, Literal: -n}, nil

	case TokIdent:
		p.lex.Next()
		name := tok.Value
		peek, err := p.lex.Peek()
		if err != nil {
			return types.Argument{}, err
		}
		if peek.Kind == TokLParen {
			p.lex.Next()
			nestedArgs, err := p.parseArgs()
			if err != nil {
				return types.Argument{}, err
			}
			closeTok, err := p.lex.Next()
			if err != nil {
				return types.Argument{}, err
			}
			if closeTok.Kind != TokRParen {
				return types.Argument{}, types.NewSyntaxError(closeTok.Pos, "unterminated nested call", TokRParen.String())
			}
			return types.Argument{Kind: types.ArgCall, Call: &types.FunctionCall{Name: name, Arguments: nestedArgs}}, nil
		}
		switch name {
		case "true":
			return types.Argument{Kind: types.ArgLiteral, Literal: true}, nil
		case "false":
			return types.Argument{Kind: types.ArgLiteral, Literal: false}, nil
		case "null":
			return types.Argument{Kind: types.ArgLiteral, Literal: nil}, nil
		default:
			return types.Argument{Kind: types.ArgRef, Ref: name}, nil
		}

	default:
		return types.Argument{}, types.NewSyntaxError(tok.Pos, "expected an argument", TokString.String(), TokInt.String(), TokIdent.String())
	}
}

// parseOptionalNested implements `nested := '{' filter '}' | '[' filter
// ']' | '.' expression`. squiggly is true only for the explicit brace
// forms; dot-path sugar marks its node non-squiggly.
func (p *Parser) parseOptionalNested() (hasNested, squiggly, emptyNested bool, children []*ExpressionNode, err error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return false, false, false, nil, err
	}

	switch tok.Kind {
	case TokLBrace, TokLBracket:
		closeKind := TokRBrace
		if tok.Kind == TokLBracket {
			closeKind = TokRBracket
		}
		p.lex.Next()

		peek, err := p.lex.Peek()
		if err != nil {
			return false, false, false, nil, err
		}
		if peek.Kind == closeKind {
			p.lex.Next()
			return true, true, true, nil, nil
		}

		kids, err := p.parseCommaList(nil)
		if err != nil {
			return false, false, false, nil, err
		}
		closeTok, err := p.lex.Next()
		if err != nil {
			return false, false, false, nil, err
		}
		if closeTok.Kind != closeKind {
			return false, false, false, nil, types.NewSyntaxError(closeTok.Pos, "unterminated nested block", closeKind.String())
		}
		return true, true, false, kids, nil

	case TokDot:
		p.lex.Next()
		kids, err := p.parseExpression(nil)
		if err != nil {
			return false, false, false, nil, err
		}
		return true, false, false, kids, nil

	default:
		return false, false, false, nil, nil
	}
}
