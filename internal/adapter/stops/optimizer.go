package stops

import (
	"context"
	"fmt"
	"strings"

	"github.com/davoram/hearth/internal/adapter/archset"
	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/logger"
)

const (
	// aggressiveShortStop terminates short-form answers at the first
	// paragraph break.
	aggressiveShortStop = "\n\n"

	conservativeCapCeiling = 8
	permissiveCapFloor     = 2
)

// Optimizer builds the prioritised, deduplicated, size-capped stop set
// for one generation request. Deterministic given the architecture
// table; no hidden state.
type Optimizer struct {
	registry *archset.Registry
	logger   *logger.StyledLogger
}

func NewOptimizer(registry *archset.Registry, log *logger.StyledLogger) *Optimizer {
	return &Optimizer{
		registry: registry,
		logger:   log,
	}
}

func (o *Optimizer) Optimize(ctx context.Context, architecture string, requestStops []string, genCtx domain.GenerationContext) *domain.OptimizedStopTokens {
	def := o.registry.Lookup(architecture)
	result := &domain.OptimizedStopTokens{}

	// 1. caller-supplied stops that collide with template structure get
	// filtered out; duplicates of primary stops are just redundant
	surviving := o.filterRequestStops(def, requestStops, result)
	if issues := o.ValidateStopTokens(architecture, surviving); len(issues) > 0 {
		o.logger.Warn("Suspect caller stop tokens", "architecture", def.Name, "issues", describeIssues(issues))
	}

	// 2. primary tier: architecture stops first, surviving caller stops after
	result.Primary = append(result.Primary, def.PrimaryStops...)
	result.Primary = appendUnique(result.Primary, surviving...)

	// 3. context-aware tier
	if genCtx.SupportsToolCalling {
		result.Context = appendUnique(result.Context, def.ToolStops...)
	}
	if genCtx.ExpectedLength == domain.LengthShort {
		result.Context = appendUnique(result.Context, aggressiveShortStop)
	}
	if genCtx.ExpectedLength == domain.LengthVeryLong {
		// long-form generation gets free rein
		result.Context = nil
	}
	if genCtx.Temperature > 1.0 {
		result.Context = appendUnique(result.Context, def.SafetyStops...)
	}

	// 4. safety tier scaled by strategy
	result.Safety = safetyForStrategy(def.SafetyStops, genCtx.Strategy)

	// 5. enforce the strategy-adjusted cap
	cap := strategyCap(def.MaxStops, genCtx.Strategy)
	o.enforceCap(result, cap)

	// 6. observability only; no behavioural contract beyond non-empty
	// when something got filtered
	result.Reasoning = o.buildReasoning(def.Name, genCtx, result, cap)

	return result
}

// filterRequestStops drops caller stops that equal, contain or are
// contained by a problematic token (case-insensitive both directions).
func (o *Optimizer) filterRequestStops(def *archset.Definition, requestStops []string, result *domain.OptimizedStopTokens) []string {
	var surviving []string

	for _, stop := range requestStops {
		if stop == "" {
			continue
		}

		if problem, bad := o.conflictsWithProblematic(def, stop); bad {
			o.logger.Debug("Filtered problematic caller stop token",
				"architecture", def.Name, "stop", stop, "conflicts_with", problem)
			result.Filtered = appendUnique(result.Filtered, stop)
			continue
		}

		if containsFold(def.PrimaryStops, stop) {
			// redundant with a primary stop, nothing lost by dropping it
			continue
		}

		surviving = append(surviving, stop)
	}

	return surviving
}

func (o *Optimizer) conflictsWithProblematic(def *archset.Definition, stop string) (string, bool) {
	lowered := strings.ToLower(stop)
	for _, problem := range def.ProblematicTokens {
		lp := strings.ToLower(problem)
		if lowered == lp || strings.Contains(lowered, lp) || strings.Contains(lp, lowered) {
			return problem, true
		}
	}
	return "", false
}

func safetyForStrategy(safetyStops []string, strategy domain.StopStrategy) []string {
	var count int
	switch strategy {
	case domain.StrategyConservative:
		count = len(safetyStops)
	case domain.StrategyPermissive:
		count = 1
	default:
		count = 2
	}
	if count > len(safetyStops) {
		count = len(safetyStops)
	}
	out := make([]string, count)
	copy(out, safetyStops[:count])
	return out
}

func strategyCap(maxStops int, strategy domain.StopStrategy) int {
	switch strategy {
	case domain.StrategyConservative:
		adjusted := maxStops + 2
		if adjusted > conservativeCapCeiling {
			adjusted = conservativeCapCeiling
		}
		return adjusted
	case domain.StrategyPermissive:
		adjusted := maxStops - 1
		if adjusted < permissiveCapFloor {
			adjusted = permissiveCapFloor
		}
		return adjusted
	default:
		return maxStops
	}
}

// enforceCap rebuilds the tiers when the distinct active union exceeds
// the budget: roughly half goes to primary, the remainder to context
// then safety in that priority order. Everything dropped lands in
// Filtered so tests and operators can see it.
func (o *Optimizer) enforceCap(result *domain.OptimizedStopTokens, cap int) {
	result.Primary = dedupe(result.Primary)
	result.Context = dedupe(result.Context)
	result.Safety = dedupe(result.Safety)

	if result.TotalActive() <= cap {
		return
	}

	primaryBudget := (cap + 1) / 2
	if primaryBudget > len(result.Primary) {
		primaryBudget = len(result.Primary)
	}

	keptPrimary := result.Primary[:primaryBudget]
	remainder := cap - len(keptPrimary)

	seen := make(map[string]struct{}, cap)
	for _, tok := range keptPrimary {
		seen[tok] = struct{}{}
	}

	keptContext, remainder := takeBudget(result.Context, seen, remainder)
	keptSafety, _ := takeBudget(result.Safety, seen, remainder)

	var dropped []string
	for _, tier := range [][]string{result.Primary[primaryBudget:], result.Context, result.Safety} {
		for _, tok := range tier {
			if _, active := seen[tok]; !active {
				dropped = append(dropped, tok)
			}
		}
	}

	result.Primary = keptPrimary
	result.Context = keptContext
	result.Safety = keptSafety
	for _, tok := range dropped {
		result.Filtered = appendUnique(result.Filtered, tok)
	}
}

func takeBudget(tier []string, seen map[string]struct{}, budget int) ([]string, int) {
	var kept []string
	for _, tok := range tier {
		if budget <= 0 {
			break
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		kept = append(kept, tok)
		budget--
	}
	return kept, budget
}

func (o *Optimizer) buildReasoning(architecture string, genCtx domain.GenerationContext, result *domain.OptimizedStopTokens, cap int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s: %d primary, %d context, %d safety (cap %d)",
		architecture, genCtx.Strategy, len(result.Primary), len(result.Context), len(result.Safety), cap)
	if len(result.Filtered) > 0 {
		fmt.Fprintf(&b, "; filtered %d: %s", len(result.Filtered), strings.Join(result.Filtered, ", "))
	}
	if genCtx.ExpectedLength == domain.LengthVeryLong {
		b.WriteString("; context stops cleared for long-form generation")
	}
	return b.String()
}

func appendUnique(list []string, tokens ...string) []string {
	for _, tok := range tokens {
		found := false
		for _, existing := range list {
			if existing == tok {
				found = true
				break
			}
		}
		if !found {
			list = append(list, tok)
		}
	}
	return list
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, tok := range list {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}
