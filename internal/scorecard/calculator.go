package scorecard

import "math/big"

// sectionTally is the per-section accumulation of graded criteria.
type sectionTally struct {
	earned  int
	max     int
	rated   int
	touched bool
}

// active reports whether the section contributes its weight. A touched section whose
// graded criteria are all worth zero points is treated as untouched.
func (t sectionTally) active() bool {
	return t.touched && t.max > 0
}

func tallySection(s Section, criteria map[string]Criterion, ratings RatingSet) sectionTally {
	var t sectionTally
	for _, id := range s.Criteria {
		rating, ok := ratings[id]
		if !ok {
			continue
		}
		i, graded := rating.Index()
		if !graded {
			continue
		}
		c, ok := criteria[id]
		if !ok || i < 0 || i >= len(c.Points) {
			continue
		}
		t.touched = true
		t.rated++
		t.earned += c.Points[i]
		t.max += c.Max()
	}
	return t
}

// evaluate walks every section once, calling visit (when non-nil) with each tally, and
// returns the exact weighted sum and the active weight.
func evaluate(rubric RubricDefinition, ratings RatingSet, visit func(Section, sectionTally)) (*big.Rat, int64) {
	weighted := new(big.Rat)
	var activeWeight int64

	for _, s := range rubric.Sections {
		t := tallySection(s, rubric.Criteria, ratings)
		if visit != nil {
			visit(s, t)
		}
		if !t.active() {
			continue
		}
		weighted.Add(weighted, big.NewRat(int64(t.earned)*int64(s.Weight), int64(t.max)))
		activeWeight += int64(s.Weight)
	}
	return weighted, activeWeight
}

// percent returns round-half-up(weighted / activeWeight * 100). activeWeight must be positive.
func percent(weighted *big.Rat, activeWeight int64) int {
	q := new(big.Rat).Mul(weighted, big.NewRat(100, activeWeight))

	// floor(q + 1/2) == (2*num + den) / (2*den) for non-negative q.
	num := new(big.Int).Lsh(q.Num(), 1)
	num.Add(num, q.Denom())
	den := new(big.Int).Lsh(q.Denom(), 1)
	return int(new(big.Int).Quo(num, den).Int64())
}

// Calculate computes the normalized score (0-100) of ratings against rubric.
//
// Sections with no graded criteria are excluded from both the weighted sum and the
// active weight, so the graded sections are renormalized to fill 100%. The second
// return value is false when nothing gradable has been rated. Calculate never panics;
// ratings for criteria the rubric does not define, and option indexes outside a
// criterion's point table, are ignored.
func Calculate(rubric RubricDefinition, ratings RatingSet) (int, bool) {
	weighted, activeWeight := evaluate(rubric, ratings, nil)
	if activeWeight == 0 {
		return 0, false
	}
	return percent(weighted, activeWeight), true
}

// SectionResult describes one section's contribution to a score.
type SectionResult struct {
	ID     string  `json:"id"`
	Title  string  `json:"title,omitempty"`
	Weight int     `json:"weight"`
	Earned int     `json:"earned"`
	Max    int     `json:"max"`
	Rated  int     `json:"rated"`
	Active bool    `json:"active"`
	Ratio  float64 `json:"ratio"`
}

// Breakdown is the explained form of Calculate.
type Breakdown struct {
	Rubric       Key             `json:"-"`
	Sections     []SectionResult `json:"sections"`
	ActiveWeight int             `json:"active_weight"`
	Score        *int            `json:"score"`
}

// Explain runs the same computation as Calculate and reports each section's tally.
func Explain(rubric RubricDefinition, ratings RatingSet) Breakdown {
	b := Breakdown{
		Rubric:   rubric.Key,
		Sections: make([]SectionResult, 0, len(rubric.Sections)),
	}

	weighted, activeWeight := evaluate(rubric, ratings, func(s Section, t sectionTally) {
		r := SectionResult{
			ID:     s.ID,
			Title:  s.Title,
			Weight: s.Weight,
			Earned: t.earned,
			Max:    t.max,
			Rated:  t.rated,
			Active: t.active(),
		}
		if r.Active {
			r.Ratio = float64(t.earned) / float64(t.max)
		}
		b.Sections = append(b.Sections, r)
	})

	b.ActiveWeight = int(activeWeight)
	if activeWeight > 0 {
		score := percent(weighted, activeWeight)
		b.Score = &score
	}
	return b
}
