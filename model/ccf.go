package model

import (
	"fmt"
	"sort"
	"strings"
)

// CcfModel enumerates the supported common-cause-failure combination models.
type CcfModel int

const (
	// CcfBeta is the two-level beta-factor model: every member either fails
	// independently or all members fail together via one shared
	// common-cause event.
	CcfBeta CcfModel = iota
	// CcfMGL is the multiple-greek-letters model: failure probability mass
	// is distributed across combination levels 2..n.
	CcfMGL
	// CcfAlpha is the alpha-factor model: same level structure as MGL, with
	// factors interpreted as direct fractions of total failure probability
	// rather than conditional ratios.
	CcfAlpha
)

func (m CcfModel) String() string {
	switch m {
	case CcfBeta:
		return "beta-factor"
	case CcfMGL:
		return "MGL"
	case CcfAlpha:
		return "alpha-factor"
	default:
		return "unknown"
	}
}

// CcfGroup names a set of basic events that share a common failure cause, the
// model used to distribute failure probability across combination levels,
// and that model's factors.
//
// Factors has exactly len(Members)-1 entries. Factors[i] is the share of the
// group's average member failure probability assigned to common-cause
// events involving exactly i+2 members of the group, split evenly across
// that level's combinations (see Expand); the remaining fraction
// (1 - sum(Factors)) of each member's own probability is its
// independent-failure probability. For CcfBeta, len(Members) must be 2 and
// Factors has one entry, beta.
type CcfGroup struct {
	ID      string
	OrigID  string
	Model   CcfModel
	Members []string
	Factors []float64
}

// NewCcfGroup constructs and validates a CcfGroup.
func NewCcfGroup(id string, model CcfModel, members []string, factors []float64) (*CcfGroup, error) {
	if len(members) < 2 {
		return nil, fmt.Errorf("ccf group %q: requires at least 2 members, got %d", id, len(members))
	}
	if model == CcfBeta && len(members) != 2 {
		return nil, fmt.Errorf("ccf group %q: beta-factor model requires exactly 2 members, got %d", id, len(members))
	}
	if len(factors) != len(members)-1 {
		return nil, fmt.Errorf("ccf group %q: expected %d factors for %d members, got %d", id, len(members)-1, len(members), len(factors))
	}
	sum := 0.0
	for _, f := range factors {
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("ccf group %q: factor %v out of range [0,1]", id, f)
		}
		sum += f
	}
	if sum > 1 {
		return nil, fmt.Errorf("ccf group %q: factors sum to %v, must not exceed 1", id, sum)
	}
	return &CcfGroup{
		ID:      normalizeID(id),
		OrigID:  id,
		Model:   model,
		Members: append([]string(nil), members...),
		Factors: append([]float64(nil), factors...),
	}, nil
}

// CcfExpansion is the result of expanding one CcfGroup: the synthetic basic
// events it introduces, and, for each original member, the replacement
// Formula (an OR of the member's independent event with every combination
// event it participates in) that the indexed-graph builder substitutes in
// place of the bare member reference.
type CcfExpansion struct {
	BasicEvents map[string]*BasicEvent // keyed by synthetic event id
	Replacement map[string]*Formula    // keyed by lower-cased member name
}

// Expand synthesizes the independent and combination-level basic events for
// this group, given each member's total (unconditional) failure probability,
// and returns the per-member replacement formula described by CcfExpansion.
//
// Failure probability mass for each member is split into an independent
// fraction and, for each combination level L in [2, n], a fraction
// Factors[L-2]. The probability assigned to a level's combination events is
// computed from the group's average member probability and divided evenly
// across the C(n, L) combinations of that level, following the alpha-factor
// model's direct-fraction convention; the MGL model is treated identically
// here since the distilled spec leaves the exact conditional-ratio
// bookkeeping of classical MGL unspecified and both models must produce the
// same general "OR of independent event and combination events" structure.
func (g *CcfGroup) Expand(memberProb map[string]float64) (*CcfExpansion, error) {
	n := len(g.Members)
	for _, m := range g.Members {
		if _, ok := memberProb[strings.ToLower(m)]; !ok {
			return nil, fmt.Errorf("ccf group %q: no probability supplied for member %q", g.OrigID, m)
		}
	}

	avgQ := 0.0
	for _, m := range g.Members {
		avgQ += memberProb[strings.ToLower(m)]
	}
	avgQ /= float64(n)

	independentFraction := 1.0
	for _, f := range g.Factors {
		independentFraction -= f
	}

	result := &CcfExpansion{
		BasicEvents: make(map[string]*BasicEvent),
		Replacement: make(map[string]*Formula),
	}

	memberCombos := make(map[string][]FormulaArg, n)

	for level := 2; level <= n; level++ {
		factor := g.Factors[level-2]
		if factor == 0 {
			continue
		}
		combos := combinations(g.Members, level)
		share := factor * avgQ / float64(len(combos))
		for idx, combo := range combos {
			eventID := fmt.Sprintf("%s.ccf.l%d.%d", g.OrigID, level, idx)
			be, err := NewBasicEvent(eventID, share, nil)
			if err != nil {
				return nil, fmt.Errorf("ccf group %q: %w", g.OrigID, err)
			}
			result.BasicEvents[be.ID] = be
			for _, member := range combo {
				memberCombos[strings.ToLower(member)] = append(memberCombos[strings.ToLower(member)], Event(eventID))
			}
		}
	}

	for _, member := range g.Members {
		key := strings.ToLower(member)
		indepID := fmt.Sprintf("%s.ccf.indep.%s", g.OrigID, key)
		indep, err := NewBasicEvent(indepID, independentFraction*memberProb[key], nil)
		if err != nil {
			return nil, fmt.Errorf("ccf group %q: %w", g.OrigID, err)
		}
		result.BasicEvents[indep.ID] = indep

		args := append([]FormulaArg{Event(indepID)}, memberCombos[key]...)
		var formula *Formula
		if len(args) == 1 {
			// No combination events contributed (all factors zero): the
			// member reduces to its independent event alone via a pass-through.
			formula, err = NewFormula(NULL, 0, args[0])
		} else {
			formula, err = NewFormula(OR, 0, args...)
		}
		if err != nil {
			return nil, fmt.Errorf("ccf group %q: %w", g.OrigID, err)
		}
		result.Replacement[key] = formula
	}

	return result, nil
}

// combinations returns every size-k subset of items, as slices of item
// values in input order, sorted by their comma-joined item values.
func combinations(items []string, k int) [][]string {
	n := len(items)
	if k > n {
		return nil
	}
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	var out [][]string
	for {
		combo := make([]string, k)
		for i, idx := range indices {
			combo[i] = items[idx]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i], ",") < strings.Join(out[j], ",")
	})
	return out
}
