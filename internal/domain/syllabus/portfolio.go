package syllabus

import (
	"strings"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// GroupPortfolio holds the accreditation evidence of a theory or lab group.
// Empty strings mean the slot has not been uploaded.
type GroupPortfolio struct {
	ID                      shared.ID
	GroupID                 shared.ID
	SyllabusURL             string
	LowGradeEvidenceURL     string
	AverageGradeEvidenceURL string
	HighGradeEvidenceURL    string
}

// NewGroupPortfolio builds an empty portfolio for a group.
func NewGroupPortfolio(groupID shared.ID) *GroupPortfolio {
	return &GroupPortfolio{
		ID:      shared.NewID(),
		GroupID: groupID,
	}
}

// Identity implements shared.Identifiable.
func (p *GroupPortfolio) Identity() shared.ID {
	return p.ID
}

// UpdateEvidence stores url in the slot selected by kind. Unknown kinds are
// rejected and leave the portfolio untouched.
func (p *GroupPortfolio) UpdateEvidence(kind shared.EvidenceKind, url string) error {
	url = strings.TrimSpace(url)
	switch kind {
	case shared.EvidenceLow:
		p.LowGradeEvidenceURL = url
	case shared.EvidenceAverage:
		p.AverageGradeEvidenceURL = url
	case shared.EvidenceHigh:
		p.HighGradeEvidenceURL = url
	case shared.EvidenceSyllabus:
		p.SyllabusURL = url
	default:
		return shared.ErrInvalidEvidenceKind.Withf("unknown evidence kind %q", kind)
	}
	return nil
}
