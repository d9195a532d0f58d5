package grading

import (
	"math"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// requiredWeightTotal is the sum a finalized weight set must reach.
const requiredWeightTotal = 100.0

// weightSumTolerance absorbs binary floating point error only; any real
// difference in the submitted percentages fails.
const weightSumTolerance = 1e-9

// GradeWeight is the percentage a grade type contributes to a theory
// group's final average.
type GradeWeight struct {
	ID            shared.ID
	TheoryGroupID shared.ID
	Type          shared.GradeType
	Weight        shared.Percentage
}

// NewGradeWeightParams holds the raw input for NewGradeWeight.
type NewGradeWeightParams struct {
	ID            string
	TheoryGroupID string
	Type          string
	Weight        float64
}

// NewGradeWeight validates and builds a GradeWeight.
func NewGradeWeight(params NewGradeWeightParams) (*GradeWeight, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	groupID, err := shared.ParseID(params.TheoryGroupID)
	if err != nil {
		return nil, err
	}
	gradeType, err := shared.ParseGradeType(params.Type)
	if err != nil {
		return nil, shared.ErrInvalidGradeWeightType.Withf("invalid grade weight type %q", params.Type)
	}
	weight, err := shared.NewPercentage(params.Weight)
	if err != nil {
		return nil, err
	}

	return &GradeWeight{
		ID:            id,
		TheoryGroupID: groupID,
		Type:          gradeType,
		Weight:        weight,
	}, nil
}

// Identity implements shared.Identifiable.
func (w *GradeWeight) Identity() shared.ID {
	return w.ID
}

// WeightSet is the collection of weights configured for one theory group.
// A set may be saved in draft state; only a finalized set may be used to
// compute averages.
type WeightSet []*GradeWeight

// Sum returns the total of all percentages.
func (s WeightSet) Sum() float64 {
	total := 0.0
	for _, w := range s {
		total += w.Weight.Float64()
	}
	return total
}

// Finalize checks that every type is valid and appears once, and that the
// percentages add up to exactly 100.
func (s WeightSet) Finalize() error {
	seen := make(map[shared.GradeType]bool, len(s))
	for _, w := range s {
		if !w.Type.IsValid() {
			return shared.ErrInvalidGradeWeightType.Withf("invalid grade weight type %q", w.Type)
		}
		if seen[w.Type] {
			return shared.ErrInvalidGradeWeightType.Withf("grade weight type %s is repeated", w.Type)
		}
		seen[w.Type] = true
	}
	sum := s.Sum()
	if math.Abs(sum-requiredWeightTotal) > weightSumTolerance {
		return &shared.WeightSumError{Sum: roundTo2(sum)}
	}
	return nil
}

// IsFinal reports whether Finalize would succeed.
func (s WeightSet) IsFinal() bool {
	return len(s) > 0 && s.Finalize() == nil
}

// ByType indexes the set by grade type.
func (s WeightSet) ByType() map[shared.GradeType]shared.Percentage {
	out := make(map[shared.GradeType]shared.Percentage, len(s))
	for _, w := range s {
		out[w.Type] = w.Weight
	}
	return out
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
