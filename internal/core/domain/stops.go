package domain

// StopStrategy tunes how aggressively the optimizer guards generation.
type StopStrategy int

const (
	StrategyConservative StopStrategy = iota
	StrategyBalanced
	StrategyPermissive
)

func (s StopStrategy) String() string {
	switch s {
	case StrategyConservative:
		return "conservative"
	case StrategyPermissive:
		return "permissive"
	default:
		return "balanced"
	}
}

// ParseStopStrategy maps config strings onto a strategy, defaulting to
// balanced for anything unrecognised.
func ParseStopStrategy(s string) StopStrategy {
	switch s {
	case "conservative":
		return StrategyConservative
	case "permissive":
		return StrategyPermissive
	default:
		return StrategyBalanced
	}
}

// ExpectedLength is a coarse hint about how long the completion will run.
type ExpectedLength int

const (
	LengthMedium ExpectedLength = iota
	LengthShort
	LengthLong
	LengthVeryLong
)

func (l ExpectedLength) String() string {
	switch l {
	case LengthShort:
		return "short"
	case LengthLong:
		return "long"
	case LengthVeryLong:
		return "very-long"
	default:
		return "medium"
	}
}

// GenerationContext carries the per-request signals the stop-token
// optimizer keys its decisions off.
type GenerationContext struct {
	Temperature         float64
	ExpectedLength      ExpectedLength
	Strategy            StopStrategy
	SupportsToolCalling bool
}

// OptimizedStopTokens is the optimizer's per-request output: three active
// tiers in priority order plus everything it dropped, for visibility.
// No token appears in both an active tier and Filtered.
type OptimizedStopTokens struct {
	Reasoning string
	Primary   []string
	Safety    []string
	Context   []string
	Filtered  []string
}

// Active returns the deduplicated union of the active tiers in priority
// order. This is what gets handed to the inference engine.
func (o *OptimizedStopTokens) Active() []string {
	seen := make(map[string]struct{}, len(o.Primary)+len(o.Safety)+len(o.Context))
	active := make([]string, 0, len(o.Primary)+len(o.Safety)+len(o.Context))

	for _, tier := range [][]string{o.Primary, o.Context, o.Safety} {
		for _, tok := range tier {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			active = append(active, tok)
		}
	}
	return active
}

// TotalActive counts distinct active stop tokens across all tiers.
func (o *OptimizedStopTokens) TotalActive() int {
	return len(o.Active())
}
