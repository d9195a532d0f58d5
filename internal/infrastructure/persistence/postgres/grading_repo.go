package postgres

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const gradeSelect = `SELECT id, enrollment_id, type, score FROM grades `

// GradeRepository implements grading.GradeRepository for PostgreSQL.
type GradeRepository struct {
	q Querier
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(q Querier) *GradeRepository {
	return &GradeRepository{q: q}
}

// FindByID returns the grade or nil.
func (r *GradeRepository) FindByID(ctx context.Context, id shared.ID) (*grading.Grade, error) {
	g, err := queryOne(ctx, r.q, scanGrade, gradeSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}
	return g, nil
}

// FindByEnrollmentID returns the grades of an enrollment ordered by type.
func (r *GradeRepository) FindByEnrollmentID(ctx context.Context, enrollmentID shared.ID) ([]*grading.Grade, error) {
	grades, err := queryAll(ctx, r.q, scanGrade, gradeSelect+"WHERE enrollment_id = $1 ORDER BY type", enrollmentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	return grades, nil
}

// FindByEnrollmentAndType returns the grade in one evaluation slot or nil.
func (r *GradeRepository) FindByEnrollmentAndType(ctx context.Context, enrollmentID shared.ID, gradeType shared.GradeType) (*grading.Grade, error) {
	g, err := queryOne(ctx, r.q, scanGrade,
		gradeSelect+"WHERE enrollment_id = $1 AND type = $2", enrollmentID.String(), string(gradeType))
	if err != nil {
		return nil, fmt.Errorf("failed to get grade by type: %w", err)
	}
	return g, nil
}

// FindStatsByTheoryGroupIDs aggregates average, max and min per group and
// grade type.
func (r *GradeRepository) FindStatsByTheoryGroupIDs(ctx context.Context, theoryGroupIDs []shared.ID) ([]grading.GroupStats, error) {
	if len(theoryGroupIDs) == 0 {
		return []grading.GroupStats{}, nil
	}

	sql, args, err := builder.
		From(goqu.T("grades").As("g")).
		Join(goqu.T("enrollments").As("e"), goqu.On(goqu.I("e.id").Eq(goqu.I("g.enrollment_id")))).
		Select(
			goqu.I("e.theory_group_id"),
			goqu.I("g.type"),
			goqu.AVG("g.score"),
			goqu.MAX("g.score"),
			goqu.MIN("g.score"),
		).
		Where(goqu.I("e.theory_group_id").In(idStrings(theoryGroupIDs))).
		GroupBy(goqu.I("e.theory_group_id"), goqu.I("g.type")).
		Order(goqu.I("e.theory_group_id").Asc(), goqu.I("g.type").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build grade stats query: %w", err)
	}

	stats, err := queryAll(ctx, r.q, scanGroupStats, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grade stats: %w", err)
	}
	return stats, nil
}

// SaveMany upserts the grades by (enrollment, type) in one statement.
func (r *GradeRepository) SaveMany(ctx context.Context, grades []*grading.Grade) error {
	if len(grades) == 0 {
		return nil
	}

	rows := make([]interface{}, len(grades))
	for i, g := range grades {
		rows[i] = goqu.Record{
			"id":            g.ID.String(),
			"enrollment_id": g.EnrollmentID.String(),
			"type":          string(g.Type),
			"score":         g.Score.Float64(),
		}
	}
	sql, args, err := builder.Insert("grades").
		Rows(rows...).
		OnConflict(goqu.DoUpdate("enrollment_id, type", goqu.Record{"score": goqu.L("EXCLUDED.score")})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build grade upsert: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if IsCheckViolation(err) {
			return shared.ErrInvalidScore.Wrap(err)
		}
		return fmt.Errorf("failed to save grades: %w", err)
	}
	return nil
}

// Delete removes the grade.
func (r *GradeRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "grades", id); err != nil {
		return fmt.Errorf("failed to delete grade: %w", err)
	}
	return nil
}

func scanGrade(row pgx.Row) (*grading.Grade, error) {
	var id, enrollmentID, gradeType string
	var score float64
	if err := row.Scan(&id, &enrollmentID, &gradeType, &score); err != nil {
		return nil, err
	}
	return &grading.Grade{
		ID:           shared.ID(id),
		EnrollmentID: shared.ID(enrollmentID),
		Type:         shared.GradeType(gradeType),
		Score:        shared.Score(score),
	}, nil
}

func scanGroupStats(row pgx.Row) (grading.GroupStats, error) {
	var groupID, gradeType string
	var s grading.GroupStats
	if err := row.Scan(&groupID, &gradeType, &s.Average, &s.Max, &s.Min); err != nil {
		return s, err
	}
	s.TheoryGroupID = shared.ID(groupID)
	s.Type = shared.GradeType(gradeType)
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE WEIGHT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// WeightRepository implements grading.WeightRepository for PostgreSQL.
type WeightRepository struct {
	q Querier
}

// NewWeightRepository creates a new WeightRepository.
func NewWeightRepository(q Querier) *WeightRepository {
	return &WeightRepository{q: q}
}

// FindByTheoryGroupID returns the weight set of a group, possibly empty.
func (r *WeightRepository) FindByTheoryGroupID(ctx context.Context, theoryGroupID shared.ID) (grading.WeightSet, error) {
	weights, err := queryAll(ctx, r.q, scanGradeWeight, `
		SELECT id, theory_group_id, type, weight
		FROM grade_weights
		WHERE theory_group_id = $1
		ORDER BY type
	`, theoryGroupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query grade weights: %w", err)
	}
	return grading.WeightSet(weights), nil
}

// ReplaceForGroup deletes the current set and inserts the new one. Callers
// run it inside a transaction so readers never see a partial set.
func (r *WeightRepository) ReplaceForGroup(ctx context.Context, theoryGroupID shared.ID, weights grading.WeightSet) error {
	if _, err := r.q.Exec(ctx, "DELETE FROM grade_weights WHERE theory_group_id = $1", theoryGroupID.String()); err != nil {
		return fmt.Errorf("failed to clear grade weights: %w", err)
	}
	if len(weights) == 0 {
		return nil
	}

	rows := make([]interface{}, len(weights))
	for i, w := range weights {
		rows[i] = goqu.Record{
			"id":              w.ID.String(),
			"theory_group_id": theoryGroupID.String(),
			"type":            string(w.Type),
			"weight":          w.Weight.Float64(),
		}
	}
	sql, args, err := builder.Insert("grade_weights").Rows(rows...).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build grade weight insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrInvalidGradeWeightType.Wrap(err)
		}
		return fmt.Errorf("failed to save grade weights: %w", err)
	}
	return nil
}

func scanGradeWeight(row pgx.Row) (*grading.GradeWeight, error) {
	var id, groupID, gradeType string
	var weight float64
	if err := row.Scan(&id, &groupID, &gradeType, &weight); err != nil {
		return nil, err
	}
	return &grading.GradeWeight{
		ID:            shared.ID(id),
		TheoryGroupID: shared.ID(groupID),
		Type:          shared.GradeType(gradeType),
		Weight:        shared.Percentage(weight),
	}, nil
}
