// Package grading models grades, the per-group grade weights and the
// weighted final average.
package grading

import (
	"strings"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Grade is the score of one evaluation slot of an enrollment.
type Grade struct {
	ID           shared.ID
	EnrollmentID shared.ID
	Type         shared.GradeType
	Score        shared.Score
}

// NewGradeParams holds the raw input for NewGrade.
type NewGradeParams struct {
	ID           string
	EnrollmentID string
	Type         string
	Score        float64
}

// NewGrade validates and builds a Grade.
func NewGrade(params NewGradeParams) (*Grade, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	enrollmentID, err := shared.ParseID(params.EnrollmentID)
	if err != nil {
		return nil, err
	}
	gradeType, err := shared.ParseGradeType(params.Type)
	if err != nil {
		return nil, err
	}
	score, err := shared.NewScore(params.Score)
	if err != nil {
		return nil, err
	}

	return &Grade{
		ID:           id,
		EnrollmentID: enrollmentID,
		Type:         gradeType,
		Score:        score,
	}, nil
}

// Identity implements shared.Identifiable.
func (g *Grade) Identity() shared.ID {
	return g.ID
}

// UpdateScore replaces the score.
func (g *Grade) UpdateScore(value float64) error {
	score, err := shared.NewScore(value)
	if err != nil {
		return err
	}
	g.Score = score
	return nil
}

func idOrNew(raw string) (shared.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return shared.NewID(), nil
	}
	return shared.ParseID(raw)
}
