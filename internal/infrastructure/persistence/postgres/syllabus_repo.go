package postgres

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE CONTENT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const contentSelect = `SELECT id, theory_group_id, week, topic_name, status FROM course_contents `

// ContentRepository implements syllabus.ContentRepository.
type ContentRepository struct {
	q Querier
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(q Querier) *ContentRepository {
	return &ContentRepository{q: q}
}

// FindByID returns the topic or nil.
func (r *ContentRepository) FindByID(ctx context.Context, id shared.ID) (*syllabus.CourseContent, error) {
	c, err := queryOne(ctx, r.q, scanContent, contentSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return c, nil
}

// FindByTheoryGroupID returns the topics of a group ordered by week.
func (r *ContentRepository) FindByTheoryGroupID(ctx context.Context, theoryGroupID shared.ID) ([]*syllabus.CourseContent, error) {
	topics, err := queryAll(ctx, r.q, scanContent,
		contentSelect+"WHERE theory_group_id = $1 ORDER BY week, topic_name", theoryGroupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	return topics, nil
}

// Save inserts or updates the topic.
func (r *ContentRepository) Save(ctx context.Context, c *syllabus.CourseContent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO course_contents (id, theory_group_id, week, topic_name, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			week = EXCLUDED.week,
			topic_name = EXCLUDED.topic_name,
			status = EXCLUDED.status
	`, c.ID.String(), c.TheoryGroupID.String(), c.Week, c.TopicName, string(c.Status))
	if err != nil {
		return fmt.Errorf("failed to save topic: %w", err)
	}
	return nil
}

// Delete removes the topic.
func (r *ContentRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "course_contents", id); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	return nil
}

func scanContent(row pgx.Row) (*syllabus.CourseContent, error) {
	var id, groupID, status string
	c := &syllabus.CourseContent{}
	if err := row.Scan(&id, &groupID, &c.Week, &c.TopicName, &status); err != nil {
		return nil, err
	}
	c.ID = shared.ID(id)
	c.TheoryGroupID = shared.ID(groupID)
	c.Status = shared.TopicStatus(status)
	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUP PORTFOLIO REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// PortfolioRepository implements syllabus.PortfolioRepository.
type PortfolioRepository struct {
	q Querier
}

// NewPortfolioRepository creates a new PortfolioRepository.
func NewPortfolioRepository(q Querier) *PortfolioRepository {
	return &PortfolioRepository{q: q}
}

// FindByGroupID returns the portfolio of a theory or lab group, or nil.
func (r *PortfolioRepository) FindByGroupID(ctx context.Context, groupID shared.ID) (*syllabus.GroupPortfolio, error) {
	p, err := queryOne(ctx, r.q, scanPortfolio, `
		SELECT id, group_id, syllabus_url, low_grade_evidence_url, average_grade_evidence_url, high_grade_evidence_url
		FROM group_portfolios
		WHERE group_id = $1
	`, groupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return p, nil
}

// Save upserts the portfolio by group id.
func (r *PortfolioRepository) Save(ctx context.Context, p *syllabus.GroupPortfolio) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO group_portfolios (id, group_id, syllabus_url, low_grade_evidence_url, average_grade_evidence_url, high_grade_evidence_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (group_id) DO UPDATE SET
			syllabus_url = EXCLUDED.syllabus_url,
			low_grade_evidence_url = EXCLUDED.low_grade_evidence_url,
			average_grade_evidence_url = EXCLUDED.average_grade_evidence_url,
			high_grade_evidence_url = EXCLUDED.high_grade_evidence_url
	`,
		p.ID.String(),
		p.GroupID.String(),
		p.SyllabusURL,
		p.LowGradeEvidenceURL,
		p.AverageGradeEvidenceURL,
		p.HighGradeEvidenceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}

func scanPortfolio(row pgx.Row) (*syllabus.GroupPortfolio, error) {
	var id, groupID string
	p := &syllabus.GroupPortfolio{}
	err := row.Scan(&id, &groupID, &p.SyllabusURL, &p.LowGradeEvidenceURL, &p.AverageGradeEvidenceURL, &p.HighGradeEvidenceURL)
	if err != nil {
		return nil, err
	}
	p.ID = shared.ID(id)
	p.GroupID = shared.ID(groupID)
	return p, nil
}
