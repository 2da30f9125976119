package engine

import (
	"regexp"
	"strings"

	"github.com/squigglygo/squiggly/types"
)

// ExpressionKind classifies how an ExpressionNode's Name matches a path
// segment.
type ExpressionKind int

const (
	KindExact ExpressionKind = iota
	KindAnyShallow
	KindAnyDeep
	KindGlob
	KindRegex
)

func (k ExpressionKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindAnyShallow:
		return "any_shallow"
	case KindAnyDeep:
		return "any_deep"
	case KindGlob:
		return "glob"
	case KindRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// specificity constants used to rank a candidate match: higher wins.
// specExact is treated as the highest possible score; equal exact
// scores among siblings are resolved by pickBest's tie-break rules.
const (
	specNoMatch    = -1
	specAnyDeep    = 0
	specAnyShallow = 1
	specExact      = int(^uint(0) >> 1) // math.MaxInt, avoiding an import for one constant
)

var wildcardStripper = strings.NewReplacer("*", "", "?", "")

// ExpressionNode is the central AST entity: one path segment and its
// nested projection, negation and functions.
type ExpressionNode struct {
	Name        string
	RawName     string
	Kind        ExpressionKind
	Negated     bool
	Squiggly    bool
	EmptyNested bool
	Regex       *regexp.Regexp

	// Rename holds the alias set by an explicit `name:alias` production.
	// Empty when the expression was not renamed.
	Rename string

	Children       []*ExpressionNode
	KeyFunctions   []types.FunctionCall
	ValueFunctions []types.FunctionCall

	// Parent is a relation only, never an ownership path: children live
	// in Children, Parent merely points back to the enclosing node for
	// callers that need to walk upward.
	Parent *ExpressionNode
}

// newExpressionNodeOpts carries the constructor inputs that vary by
// how the parser produced the node (plain identifier/wildcard/glob vs.
// an explicit regex literal).
type newExpressionNodeOpts struct {
	name        string
	rename      string
	negated     bool
	squiggly    bool
	emptyNested bool
	isRegex     bool
	regexFlags  string
}

// newExpressionNode builds and validates an ExpressionNode, computing
// its Kind, RawName and compiled Regex. It enforces two invariants:
// name must be non-empty, and name must not be the literal "-".
func newExpressionNode(opts newExpressionNodeOpts) (*ExpressionNode, error) {
	if opts.name == "" {
		return nil, types.NewMatchError("expression node names must not be empty")
	}
	if opts.name == "-" {
		return nil, types.NewMatchError(`illegal expression node name "-"`)
	}

	n := &ExpressionNode{
		Name:        opts.name,
		Rename:      opts.rename,
		Negated:     opts.negated,
		Squiggly:    opts.squiggly,
		EmptyNested: opts.emptyNested,
	}

	switch {
	case opts.isRegex:
		n.Kind = KindRegex
		pattern := opts.name
		if strings.Contains(opts.regexFlags, "i") {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, types.NewMatchError("invalid regex pattern: " + err.Error())
		}
		n.Regex = re
		n.RawName = wildcardStripper.Replace(opts.name)
	case opts.name == "**":
		n.Kind = KindAnyDeep
		n.RawName = opts.name
	case opts.name == "*":
		n.Kind = KindAnyShallow
		n.RawName = opts.name
	case strings.ContainsAny(opts.name, "*?"):
		n.Kind = KindGlob
		n.Regex = compileGlob(opts.name)
		n.RawName = wildcardStripper.Replace(opts.name)
	default:
		n.Kind = KindExact
		n.RawName = opts.name
	}

	return n, nil
}

// compileGlob translates a `*`/`?` glob into an anchored regexp, per
// SquigglyNode.buildPattern.
func compileGlob(name string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteByte('^')
	for _, r := range name {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".?")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteByte('$')
	return regexp.MustCompile(sb.String())
}

// MatchName scores this node's Name against a candidate path segment
// name, higher meaning more specific. Returns -1 for no match.
func (n *ExpressionNode) MatchName(other string) int {
	switch n.Kind {
	case KindAnyDeep:
		return specAnyDeep
	case KindAnyShallow:
		return specAnyShallow
	case KindGlob, KindRegex:
		if n.Regex.MatchString(other) {
			return len(n.RawName) + 2
		}
		return specNoMatch
	default: // KindExact
		if n.Name == other {
			return specExact
		}
		return specNoMatch
	}
}

// IsAnyDeep reports whether this node is "**".
func (n *ExpressionNode) IsAnyDeep() bool { return n.Kind == KindAnyDeep }

// IsAnyShallow reports whether this node is "*".
func (n *ExpressionNode) IsAnyShallow() bool { return n.Kind == KindAnyShallow }

// Statement holds one root ExpressionNode: one top-level comma-separated
// branch of a Filter.
type Statement struct {
	Root *ExpressionNode
}

// Filter is an ordered sequence of Statements. Statements combine by
// set-union over matched paths.
type Filter struct {
	// Source is the original filter text this Filter was parsed from,
	// retained for cache keying and diagnostics.
	Source     string
	Statements []*Statement
}
