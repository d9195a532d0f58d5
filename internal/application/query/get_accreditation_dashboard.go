package query

import (
	"context"
	"fmt"
	"errors"
	"math"

	"github.com/epis-academic/academic-records/internal/domain/authorization"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACCREDITATION DASHBOARD QUERY
// Performance bands per grade type, final average statistics and the
// evidence portfolio of one theory group.
// ══════════════════════════════════════════════════════════════════════════════

// GetAccreditationDashboardQuery selects the group.
type GetAccreditationDashboardQuery struct {
	TeacherID     string
	TheoryGroupID string
}

// DistributionDTO counts scores per performance band.
type DistributionDTO struct {
	AtRisk    int `json:"at_risk"`
	Regular   int `json:"regular"`
	Good      int `json:"good"`
	Excellent int `json:"excellent"`
}

func (d *DistributionDTO) add(score shared.Score) {
	switch grading.BucketFor(score) {
	case grading.BucketAtRisk:
		d.AtRisk++
	case grading.BucketRegular:
		d.Regular++
	case grading.BucketGood:
		d.Good++
	case grading.BucketExcellent:
		d.Excellent++
	}
}

// TypeDistributionDTO is the distribution of one grade type.
type TypeDistributionDTO struct {
	Type         string          `json:"type"`
	Graded       int             `json:"graded"`
	Distribution DistributionDTO `json:"distribution"`
}

// FinalStatsDTO summarizes the final averages of the group. The pointers
// are nil when no student has an average.
type FinalStatsDTO struct {
	Students     int             `json:"students"`
	Average      *float64        `json:"average"`
	Max          *float64        `json:"max"`
	Min          *float64        `json:"min"`
	Distribution DistributionDTO `json:"distribution"`
}

// EvidenceDTO lists the portfolio documents. Empty strings are missing.
type EvidenceDTO struct {
	SyllabusURL             string `json:"syllabus_url"`
	LowGradeEvidenceURL     string `json:"low_grade_evidence_url"`
	AverageGradeEvidenceURL string `json:"average_grade_evidence_url"`
	HighGradeEvidenceURL    string `json:"high_grade_evidence_url"`
}

// GetAccreditationDashboardResult is the dashboard of one group.
type GetAccreditationDashboardResult struct {
	TheoryGroupID string                `json:"theory_group_id"`
	Enrolled      int                   `json:"enrolled"`
	WeightsFinal  bool                  `json:"weights_final"`
	ByType        []TypeDistributionDTO `json:"by_type"`
	Final         FinalStatsDTO         `json:"final"`
	Evidence      EvidenceDTO           `json:"evidence"`
}

// GetAccreditationDashboardHandler handles GetAccreditationDashboardQuery.
type GetAccreditationDashboardHandler struct {
	authorizer  *authorization.Service
	enrollments enrollment.Repository
	grades      grading.GradeRepository
	weights     grading.WeightRepository
	portfolios  syllabus.PortfolioRepository
}

// NewGetAccreditationDashboardHandler creates a new handler.
func NewGetAccreditationDashboardHandler(
	authorizer *authorization.Service,
	enrollments enrollment.Repository,
	grades grading.GradeRepository,
	weights grading.WeightRepository,
	portfolios syllabus.PortfolioRepository,
) *GetAccreditationDashboardHandler {
	return &GetAccreditationDashboardHandler{
		authorizer:  authorizer,
		enrollments: enrollments,
		grades:      grades,
		weights:     weights,
		portfolios:  portfolios,
	}
}

// Handle runs the query. Final averages are only computed from a finalized
// weight set; a missing portfolio reads as an empty one.
func (h *GetAccreditationDashboardHandler) Handle(ctx context.Context, q GetAccreditationDashboardQuery) (*GetAccreditationDashboardResult, error) {
	result, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_accreditation_dashboard: %w", err)
	}
	return result, nil
}

func (h *GetAccreditationDashboardHandler) handle(ctx context.Context, q GetAccreditationDashboardQuery) (*GetAccreditationDashboardResult, error) {
	teacherID, err := shared.ParseID(q.TeacherID)
	if err != nil {
		return nil, err
	}
	groupID, err := shared.ParseID(q.TheoryGroupID)
	if err != nil {
		return nil, err
	}
	if err := h.authorizer.AuthorizeTeacherForGroup(ctx, teacherID, groupID, shared.ClassTheory); err != nil {
		return nil, err
	}

	enrollments, err := h.enrollments.FindByTheoryGroup(ctx, groupID)
	if err != nil {
		return nil, internalErr("GetAccreditationDashboard", err)
	}
	weights, err := h.weights.FindByTheoryGroupID(ctx, groupID)
	if err != nil {
		return nil, internalErr("GetAccreditationDashboard", err)
	}

	result := &GetAccreditationDashboardResult{
		TheoryGroupID: groupID.String(),
		Enrolled:      len(enrollments),
		WeightsFinal:  weights.IsFinal(),
	}

	byType := make(map[shared.GradeType]*TypeDistributionDTO, len(shared.AllGradeTypes))
	for _, t := range shared.AllGradeTypes {
		byType[t] = &TypeDistributionDTO{Type: string(t)}
	}

	var finals []float64
	for _, e := range enrollments {
		grades, err := h.grades.FindByEnrollmentID(ctx, e.ID)
		if err != nil {
			return nil, internalErr("GetAccreditationDashboard", err)
		}
		for _, g := range grades {
			if d, ok := byType[g.Type]; ok {
				d.Graded++
				d.Distribution.add(g.Score)
			}
		}
		if len(grades) == 0 || !result.WeightsFinal {
			continue
		}
		avg, err := grading.ComputeAverage(grades, weights)
		if err != nil && !errors.Is(err, shared.ErrGradeWeightsNotFinal) {
			return nil, err
		}
		if avg.Value != nil {
			finals = append(finals, *avg.Value)
		}
	}
	for _, t := range shared.AllGradeTypes {
		result.ByType = append(result.ByType, *byType[t])
	}
	result.Final = summarizeFinals(finals)

	portfolio, err := h.portfolios.FindByGroupID(ctx, groupID)
	if err != nil {
		return nil, internalErr("GetAccreditationDashboard", err)
	}
	if portfolio == nil {
		portfolio = syllabus.NewGroupPortfolio(groupID)
	}
	result.Evidence = EvidenceDTO{
		SyllabusURL:             portfolio.SyllabusURL,
		LowGradeEvidenceURL:     portfolio.LowGradeEvidenceURL,
		AverageGradeEvidenceURL: portfolio.AverageGradeEvidenceURL,
		HighGradeEvidenceURL:    portfolio.HighGradeEvidenceURL,
	}
	return result, nil
}

func summarizeFinals(finals []float64) FinalStatsDTO {
	stats := FinalStatsDTO{Students: len(finals)}
	if len(finals) == 0 {
		return stats
	}
	sum, hi, lo := 0.0, finals[0], finals[0]
	for _, v := range finals {
		sum += v
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
		stats.Distribution.add(shared.Score(v))
	}
	avg := math.Round(sum/float64(len(finals))*100) / 100
	stats.Average, stats.Max, stats.Min = &avg, &hi, &lo
	return stats
}
