package scorecard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// NotApplicableLabel is the wire form of a NotApplicable rating.
const NotApplicableLabel = "N/A"

// Rating is a single grader selection: either a graded option index or NotApplicable.
// The zero value is NotApplicable.
type Rating struct {
	index  int
	graded bool
}

// Graded returns a rating that selects the option at index i.
func Graded(i int) Rating {
	return Rating{index: i, graded: true}
}

// NotApplicable returns the rating that excludes a criterion from scoring.
func NotApplicable() Rating {
	return Rating{}
}

// Index returns the selected option index and whether the rating is graded.
func (r Rating) Index() (int, bool) {
	if !r.graded {
		return 0, false
	}
	return r.index, true
}

// IsNotApplicable reports whether r is the NotApplicable rating.
func (r Rating) IsNotApplicable() bool {
	return !r.graded
}

func (r Rating) String() string {
	if !r.graded {
		return NotApplicableLabel
	}
	return fmt.Sprintf("%d", r.index)
}

// MarshalJSON encodes graded ratings as integers and NotApplicable as "N/A".
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.graded {
		return json.Marshal(NotApplicableLabel)
	}
	return json.Marshal(r.index)
}

// UnmarshalJSON accepts an integral number or the string "N/A".
// Numbers carried through float-only encodings (e.g. 2.0) are accepted when integral.
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = NotApplicable()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(s), NotApplicableLabel) {
			return fmt.Errorf("rating: unsupported value %q", s)
		}
		*r = NotApplicable()
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return fmt.Errorf("rating: %v is not a valid option index", f)
	}
	*r = Graded(int(f))
	return nil
}

// RatingSet is a sparse map from criterion id to rating.
// Criteria missing from the map are ungraded.
type RatingSet map[string]Rating

// Clone returns an independent copy of the set.
func (s RatingSet) Clone() RatingSet {
	out := make(RatingSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Indexes encodes the set in the persisted integer form, where NotApplicable is stored
// as the slot just past the criterion's last graded option. Criteria the rubric does not
// define are dropped.
func (s RatingSet) Indexes(rubric RubricDefinition) map[string]int {
	out := make(map[string]int, len(s))
	for key, rating := range s {
		c, ok := rubric.Criteria[key]
		if !ok {
			continue
		}
		if rating.IsNotApplicable() {
			out[key] = len(c.Points)
			continue
		}
		i, _ := rating.Index()
		out[key] = i
	}
	return out
}

// RatingSetFromIndexes decodes the persisted integer form produced by Indexes.
// Keys unknown to the rubric are kept as graded values; the calculator ignores them.
func RatingSetFromIndexes(rubric RubricDefinition, values map[string]int) RatingSet {
	out := make(RatingSet, len(values))
	for key, v := range values {
		if c, ok := rubric.Criteria[key]; ok && v == len(c.Points) {
			out[key] = NotApplicable()
			continue
		}
		out[key] = Graded(v)
	}
	return out
}
