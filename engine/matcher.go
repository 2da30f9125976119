package engine

import "github.com/squigglygo/squiggly/types"

// MatchKind is the three-way verdict the matcher returns for a path.
type MatchKind int

const (
	// MatchInclude means the path is kept in the projection. Expr, if
	// non-nil, is the ExpressionNode whose key/value functions should
	// be applied; a nil Expr means the path is included by implicit
	// pass-through (no functions to run).
	MatchInclude MatchKind = iota
	// MatchExclude means the path's own node is dropped, but siblings
	// are unaffected and descendants are not visited.
	MatchExclude
	// MatchNever means the whole subtree rooted at this path must be
	// pruned without further descent.
	MatchNever
)

// MatchResult is the outcome of matching one DocumentPath against a set
// of candidate root expressions.
type MatchResult struct {
	Kind MatchKind
	Expr *ExpressionNode
}

// Match is the matcher's central operation: given a path and the set of
// statement roots that make up a Filter (or the Children of an
// already-matched ExpressionNode), decide inclusion.
//
// Statements within a single Filter are matched as a UNION: all of
// their roots compete as siblings at path[0], exactly like the children
// of a single node would at any deeper level. See DESIGN.md's
// "statement union vs. sequential application" entry for the reasoning
// — composing multiple *filter texts* passed to Apply is a separate,
// sequential concern from composing statements within one filter text,
// which must union so that e.g. "id,issueSummary" keeps both fields.
func Match(path types.DocumentPath, roots []*ExpressionNode) MatchResult {
	return matchAt(roots, path, 0)
}

func matchAt(siblings []*ExpressionNode, path types.DocumentPath, idx int) MatchResult {
	for idx < len(path) && path[idx].Kind == types.PathIndex {
		idx++
	}
	if idx >= len(path) {
		return MatchResult{Kind: MatchInclude}
	}
	if len(siblings) == 0 {
		return MatchResult{Kind: MatchNever}
	}

	name := path[idx].Key
	best, bestScore, exclude := pickBest(siblings, name)
	isLast := idx == len(path)-1

	if best == nil {
		if hasPositiveSibling(siblings) {
			return MatchResult{Kind: MatchNever}
		}
		// No explicit constraint governs this name and every sibling
		// here is a negation: the enclosing node has not "closed" its
		// child set, so unmentioned properties pass through untouched,
		// for the whole remaining subtree.
		return MatchResult{Kind: MatchInclude}
	}

	if exclude {
		if isLast {
			return MatchResult{Kind: MatchExclude, Expr: best}
		}
		return MatchResult{Kind: MatchNever}
	}

	if isLast {
		return MatchResult{Kind: MatchInclude, Expr: best}
	}

	switch {
	case best.EmptyNested:
		return MatchResult{Kind: MatchNever}
	case best.IsAnyDeep():
		return MatchResult{Kind: MatchInclude, Expr: best}
	case len(best.Children) == 0:
		// A leaf match (no explicit nested projection) passes its
		// entire subtree through unfiltered.
		return MatchResult{Kind: MatchInclude, Expr: best}
	default:
		// Equally specific include siblings with the same name (e.g. the
		// "actions" heads of two dot-path statements) contribute their
		// nested projections together, in declaration order.
		var merged []*ExpressionNode
		for _, s := range siblings {
			if !s.Negated && !s.EmptyNested && s.Name == best.Name && s.MatchName(name) == bestScore {
				merged = append(merged, s.Children...)
			}
		}
		return matchAt(merged, path, idx+1)
	}
}

// pickBest applies specificity scoring and tie-break/negation
// arbitration across one sibling set.
func pickBest(siblings []*ExpressionNode, name string) (best *ExpressionNode, score int, exclude bool) {
	bestIncludeScore := specNoMatch
	var bestInclude *ExpressionNode
	bestExcludeScore := specNoMatch
	var bestExclude *ExpressionNode

	for _, s := range siblings {
		sc := s.MatchName(name)
		if sc < 0 {
			continue
		}
		if s.Negated {
			if sc >= bestExcludeScore {
				bestExcludeScore = sc
				bestExclude = s
			}
		} else {
			if sc >= bestIncludeScore {
				bestIncludeScore = sc
				bestInclude = s
			}
		}
	}

	if bestExclude == nil && bestInclude == nil {
		return nil, specNoMatch, false
	}
	if bestExclude != nil && bestExcludeScore >= bestIncludeScore {
		return bestExclude, bestExcludeScore, true
	}
	return bestInclude, bestIncludeScore, false
}

func hasPositiveSibling(siblings []*ExpressionNode) bool {
	for _, s := range siblings {
		if establishesWhitelist(s) {
			return true
		}
	}
	return false
}

// establishesWhitelist reports whether s asserts a real inclusion that
// should close its enclosing sibling set to only-listed-names. A node
// that is itself negated never does. Nor does a dot-sugar waypoint
// (e.g. the "actions" and "user" in "-actions.user.firstName") whose
// whole subtree bottoms out in nothing but negations: such a node
// exists only to route a negation to its terminal segment and must not
// itself close off unrelated siblings at any level along the way.
func establishesWhitelist(s *ExpressionNode) bool {
	return establishesWhitelistFrom(s, nil)
}

// establishesWhitelistFrom carries a visited set because a propagated
// view's children point back into their own sibling set (see
// buildPropagatedViewChildren), which would otherwise recurse forever.
// Revisiting a node there means the walk looped through a cycle that is
// always non-negated without ever finding one, which is itself a real
// selection, so that case returns true rather than false.
func establishesWhitelistFrom(s *ExpressionNode, seen map[*ExpressionNode]bool) bool {
	if s.Negated {
		return false
	}
	if len(s.Children) == 0 {
		return true
	}
	if seen[s] {
		return true
	}
	if seen == nil {
		seen = make(map[*ExpressionNode]bool)
	}
	seen[s] = true
	for _, c := range s.Children {
		if establishesWhitelistFrom(c, seen) {
			return true
		}
	}
	return false
}

// statementRoots collects a Filter's statement roots for use as the
// initial sibling set passed to Match.
func statementRoots(f *Filter) []*ExpressionNode {
	if f == nil {
		return nil
	}
	roots := make([]*ExpressionNode, len(f.Statements))
	for i, s := range f.Statements {
		roots[i] = s.Root
	}
	return roots
}
