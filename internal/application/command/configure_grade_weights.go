package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURE GRADE WEIGHTS COMMAND
// Replaces the weight set of a theory group. A draft may be saved with any
// total; finalizing requires the percentages to add up to 100.
// ══════════════════════════════════════════════════════════════════════════════

// WeightInput is the percentage of one grade type.
type WeightInput struct {
	Type       string
	Percentage float64
}

// ConfigureGradeWeightsCommand contains the new weight set.
type ConfigureGradeWeightsCommand struct {
	// TeacherID must own the theory group.
	TeacherID string

	// TheoryGroupID is the group being configured.
	TheoryGroupID string

	// Weights replace the previous set entirely.
	Weights []WeightInput

	// Finalize enforces the 100% total before saving.
	Finalize bool
}

// Validate validates the command.
func (c ConfigureGradeWeightsCommand) Validate() error {
	if err := required("configure_grade_weights", "teacher_id", c.TeacherID); err != nil {
		return err
	}
	return required("configure_grade_weights", "theory_group_id", c.TheoryGroupID)
}

// ConfigureGradeWeightsResult describes the stored set.
type ConfigureGradeWeightsResult struct {
	Sum   float64
	Final bool
}

// ConfigureGradeWeightsHandler handles the ConfigureGradeWeightsCommand.
type ConfigureGradeWeightsHandler struct {
	txManager uow.TxManager
}

// NewConfigureGradeWeightsHandler creates a new ConfigureGradeWeightsHandler.
func NewConfigureGradeWeightsHandler(txManager uow.TxManager) *ConfigureGradeWeightsHandler {
	return &ConfigureGradeWeightsHandler{txManager: txManager}
}

// Handle executes the command.
func (h *ConfigureGradeWeightsHandler) Handle(ctx context.Context, cmd ConfigureGradeWeightsCommand) (*ConfigureGradeWeightsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("configure_grade_weights: validation failed: %w", err)
	}
	teacherID, err := shared.ParseID(cmd.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("configure_grade_weights: %w", err)
	}
	groupID, err := shared.ParseID(cmd.TheoryGroupID)
	if err != nil {
		return nil, fmt.Errorf("configure_grade_weights: %w", err)
	}

	set := make(grading.WeightSet, 0, len(cmd.Weights))
	seen := make(map[shared.GradeType]bool, len(cmd.Weights))
	for _, in := range cmd.Weights {
		w, err := grading.NewGradeWeight(grading.NewGradeWeightParams{
			TheoryGroupID: groupID.String(),
			Type:          in.Type,
			Weight:        in.Percentage,
		})
		if err != nil {
			return nil, fmt.Errorf("configure_grade_weights: %w", err)
		}
		if seen[w.Type] {
			return nil, fmt.Errorf("configure_grade_weights: %w",
				shared.ErrInvalidGradeWeightType.Withf("grade weight type %s is repeated", w.Type))
		}
		seen[w.Type] = true
		set = append(set, w)
	}
	if cmd.Finalize {
		if err := set.Finalize(); err != nil {
			return nil, fmt.Errorf("configure_grade_weights: %w", err)
		}
	}

	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := repos.Authorizer().AuthorizeTeacherForGroup(ctx, teacherID, groupID, shared.ClassTheory); err != nil {
			return err
		}
		if err := repos.GradeWeights.ReplaceForGroup(ctx, groupID, set); err != nil {
			return shared.Internal("grading", "ReplaceForGroup", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("configure_grade_weights: %w", err)
	}

	return &ConfigureGradeWeightsResult{Sum: set.Sum(), Final: set.IsFinal()}, nil
}
