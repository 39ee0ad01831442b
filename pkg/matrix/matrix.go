// Package matrix implements the Eisenhower Matrix scoring rules: the
// quadrant derivation from urgency/importance scores and the rubric
// used when asking the classifier for those scores.
package matrix

// Quadrant is one of the four Eisenhower Matrix cells.
type Quadrant string

const (
	Q1 Quadrant = "Q1"
	Q2 Quadrant = "Q2"
	Q3 Quadrant = "Q3"
	Q4 Quadrant = "Q4"
)

// Scores are 1-5; a score at or above the threshold counts as
// urgent/important for quadrant placement.
const (
	MinScore = 1
	MaxScore = 5

	UrgencyThreshold    = 4
	ImportanceThreshold = 4
)

// Defaults applied when classification is unavailable or malformed.
const (
	DefaultUrgency    = 3
	DefaultImportance = 3
	DefaultQuadrant   = Q4
)

var labels = map[Quadrant]string{
	Q1: "Urgent & Important",
	Q2: "Not Urgent & Important",
	Q3: "Urgent & Not Important",
	Q4: "Not Urgent & Not Important",
}

// Display priority is an explicit table, not declaration order.
var sortRank = map[Quadrant]int{
	Q1: 0,
	Q2: 1,
	Q3: 2,
	Q4: 3,
}

// Label returns the human-readable description of the quadrant, or ""
// for an unrecognized value.
func (q Quadrant) Label() string {
	return labels[q]
}

// SortRank returns the quadrant's display priority (Q1 first). Unknown
// or empty quadrants rank after Q4.
func (q Quadrant) SortRank() int {
	if r, ok := sortRank[q]; ok {
		return r
	}
	return len(sortRank)
}

// Valid reports whether q is one of Q1..Q4.
func (q Quadrant) Valid() bool {
	_, ok := sortRank[q]
	return ok
}

// For derives the quadrant for a pair of scores. It is total: any
// integer inputs map to exactly one quadrant.
func For(urgency, importance int) Quadrant {
	urgent := urgency >= UrgencyThreshold
	important := importance >= ImportanceThreshold
	switch {
	case urgent && important:
		return Q1
	case important:
		return Q2
	case urgent:
		return Q3
	default:
		return Q4
	}
}

// Clamp forces a score into the valid [1,5] range.
func Clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// UrgencyLevels and ImportanceLevels describe each score for the
// classifier prompt, highest first.
var UrgencyLevels = [5]string{
	"5: Must do immediately/today",
	"4: Need to do in 1-2 days",
	"3: Need to do this week",
	"2: Need to do this month",
	"1: No specific deadline",
}

var ImportanceLevels = [5]string{
	"5: Critical impact on work/study",
	"4: Impacts long-term goals",
	"3: Affects daily life",
	"2: Minor impact",
	"1: Not important",
}
