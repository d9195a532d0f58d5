package grading

import (
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ApprovalScore is the minimum final average that passes a course.
const ApprovalScore = 10.5

// CourseStatus is the standing of a student in a course.
type CourseStatus string

const (
	StatusInProgress CourseStatus = "IN_PROGRESS"
	StatusApproved   CourseStatus = "APPROVED"
	StatusFailed     CourseStatus = "FAILED"
)

// FinalAverage is the outcome of weighting an enrollment's grades.
type FinalAverage struct {
	// Value is nil when the group has no usable weight configuration.
	Value  *float64
	Status CourseStatus
	// Complete is true when every weighted type has a grade.
	Complete bool
}

// ComputeAverage weights the grades by the finalized weight set. Missing
// grades contribute nothing and keep the status IN_PROGRESS. The average is
// rounded to two decimals. A draft set yields ErrGradeWeightsNotFinal.
func ComputeAverage(grades []*Grade, weights WeightSet) (FinalAverage, error) {
	if len(weights) == 0 {
		return FinalAverage{Status: StatusInProgress}, nil
	}
	if err := weights.Finalize(); err != nil {
		return FinalAverage{Status: StatusInProgress}, shared.ErrGradeWeightsNotFinal.Wrap(err)
	}

	scores := make(map[shared.GradeType]float64, len(grades))
	for _, g := range grades {
		scores[g.Type] = g.Score.Float64()
	}

	total := 0.0
	complete := true
	for _, w := range weights {
		score, ok := scores[w.Type]
		if !ok {
			complete = false
			continue
		}
		total += score * w.Weight.Fraction()
	}
	total = roundTo2(total)

	status := StatusInProgress
	if complete {
		status = StatusFailed
		if total >= ApprovalScore {
			status = StatusApproved
		}
	}
	return FinalAverage{Value: &total, Status: status, Complete: complete}, nil
}

// Bucket is a performance band used by the accreditation dashboard.
type Bucket string

const (
	BucketAtRisk    Bucket = "AT_RISK"
	BucketRegular   Bucket = "REGULAR"
	BucketGood      Bucket = "GOOD"
	BucketExcellent Bucket = "EXCELLENT"
)

// Buckets lists the bands from lowest to highest.
var Buckets = []Bucket{BucketAtRisk, BucketRegular, BucketGood, BucketExcellent}

// BucketFor classifies a score: below 10.5, below 13.5, below 16.5, or above.
func BucketFor(score shared.Score) Bucket {
	switch v := score.Float64(); {
	case v < ApprovalScore:
		return BucketAtRisk
	case v < 13.5:
		return BucketRegular
	case v < 16.5:
		return BucketGood
	default:
		return BucketExcellent
	}
}
