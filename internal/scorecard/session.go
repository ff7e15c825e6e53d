package scorecard

import (
	"errors"
	"fmt"
)

// ErrManualScoreOutOfRange is returned when an operator enters a score outside 0-100.
var ErrManualScoreOutOfRange = errors.New("manual score out of range")

// Session is the grading state of one ticket: the role being graded, the effective
// variant, and the ratings entered so far. Transitions return a new Session and never
// modify the receiver.
type Session struct {
	Role    string
	Variant string
	Ratings RatingSet
}

// NewSession starts grading role under variant with no ratings.
func NewSession(role, variant string) Session {
	return Session{Role: role, Variant: variant, Ratings: RatingSet{}}
}

// Rate records rating for criterion.
func (s Session) Rate(criterion string, rating Rating) Session {
	next := s.Ratings.Clone()
	next[criterion] = rating
	s.Ratings = next
	return s
}

// Clear removes any rating for criterion, leaving it ungraded.
func (s Session) Clear(criterion string) Session {
	if _, ok := s.Ratings[criterion]; !ok {
		return s
	}
	next := s.Ratings.Clone()
	delete(next, criterion)
	s.Ratings = next
	return s
}

// SwitchVariant moves the session to variant. Ratings belong to the variant they were
// entered under, so switching to a different variant drops all of them.
func (s Session) SwitchVariant(variant string) Session {
	if variant == s.Variant {
		return s
	}
	return NewSession(s.Role, variant)
}

// Replay replaces the session's ratings with a copy of preset, as when a template is
// applied to a ticket.
func (s Session) Replay(preset RatingSet) Session {
	s.Ratings = preset.Clone()
	return s
}

// StartSession resolves the effective variant of a ticket and loads ratings under the
// variant they were entered with. That is the recorded variant when the ticket has one,
// otherwise the requested variant, otherwise the resolved default. Ratings entered under
// any variant other than the resolved one are dropped.
func StartSession(catalog *Catalog, role, requested, persisted string, ratings RatingSet) (Session, Resolution) {
	res := ResolveVariant(catalog, role, requested, persisted)
	entered := enteredVariant(catalog, role, requested, persisted, res)
	return NewSession(role, entered).Replay(ratings).SwitchVariant(res.Variant), res
}

// StartSessionFromIndexes is StartSession for ratings in the persisted integer form.
// The values are decoded against the rubric of the variant they were entered with;
// when that variant has no rubric nothing can be decoded and the session starts empty.
func StartSessionFromIndexes(catalog *Catalog, role, requested, persisted string, values map[string]int) (Session, Resolution) {
	res := ResolveVariant(catalog, role, requested, persisted)
	entered := enteredVariant(catalog, role, requested, persisted, res)

	session := NewSession(role, entered)
	if rubric, ok := catalog.Lookup(role, entered); ok {
		session = session.Replay(RatingSetFromIndexes(rubric, values))
	}
	return session.SwitchVariant(res.Variant), res
}

func enteredVariant(catalog *Catalog, role, requested, persisted string, res Resolution) string {
	if len(catalog.VariantsFor(role)) == 0 {
		return res.Variant
	}
	switch {
	case persisted != "":
		return persisted
	case requested != "":
		return requested
	default:
		return res.Variant
	}
}

// ScoreMode says how a ticket's score field is filled.
type ScoreMode string

const (
	ScoreModeAuto   ScoreMode = "auto"
	ScoreModeManual ScoreMode = "manual"
)

// Status is the grading status derived from the score field.
type Status string

const (
	StatusUngraded Status = "ungraded"
	StatusGraded   Status = "graded"
)

// Outcome is the value to write into a ticket's score field.
type Outcome struct {
	Score *int
	Mode  ScoreMode
}

// Status reports graded iff a score is present. A score of 0 is graded.
func (o Outcome) Status() Status {
	if o.Score == nil {
		return StatusUngraded
	}
	return StatusGraded
}

// AutoScorable reports whether the catalog defines a rubric for role and variant.
func AutoScorable(catalog *Catalog, role, variant string) bool {
	_, ok := catalog.Lookup(role, variant)
	return ok
}

// Reconcile computes the score field for session.
//
// When the session's role and variant have a rubric the computed score always wins,
// including an empty result, and manual is ignored. Otherwise the score is whatever the
// operator entered, and the calculator is not invoked.
func Reconcile(catalog *Catalog, session Session, manual *int) (Outcome, error) {
	if rubric, ok := catalog.Lookup(session.Role, session.Variant); ok {
		out := Outcome{Mode: ScoreModeAuto}
		if score, ok := Calculate(rubric, session.Ratings); ok {
			out.Score = &score
		}
		return out, nil
	}

	if manual == nil {
		return Outcome{Mode: ScoreModeManual}, nil
	}
	if *manual < 0 || *manual > 100 {
		return Outcome{}, fmt.Errorf("%w: %d", ErrManualScoreOutOfRange, *manual)
	}
	score := *manual
	return Outcome{Score: &score, Mode: ScoreModeManual}, nil
}
