package command

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"
)

// SaveGroupEvidenceCommand stores one accreditation document link in the
// portfolio of a group. The portfolio is created on first use.
type SaveGroupEvidenceCommand struct {
	TeacherID string
	GroupID   string
	ClassType string

	// Kind is low, avg, high or syllabus.
	Kind string

	// URL of the uploaded document.
	URL string
}

// Validate validates the command.
func (c SaveGroupEvidenceCommand) Validate() error {
	if err := required("save_group_evidence", "teacher_id", c.TeacherID); err != nil {
		return err
	}
	if err := required("save_group_evidence", "group_id", c.GroupID); err != nil {
		return err
	}
	if err := required("save_group_evidence", "url", c.URL); err != nil {
		return err
	}
	if u, err := url.Parse(strings.TrimSpace(c.URL)); err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("save_group_evidence", "url %q is not an absolute URL", c.URL)
	}
	return nil
}

// SaveGroupEvidenceResult contains the portfolio after the update.
type SaveGroupEvidenceResult struct {
	Portfolio *syllabus.GroupPortfolio
}

// SaveGroupEvidenceHandler handles the SaveGroupEvidenceCommand.
type SaveGroupEvidenceHandler struct {
	txManager uow.TxManager
}

// NewSaveGroupEvidenceHandler creates a new SaveGroupEvidenceHandler.
func NewSaveGroupEvidenceHandler(txManager uow.TxManager) *SaveGroupEvidenceHandler {
	return &SaveGroupEvidenceHandler{txManager: txManager}
}

// Handle executes the command.
func (h *SaveGroupEvidenceHandler) Handle(ctx context.Context, cmd SaveGroupEvidenceCommand) (*SaveGroupEvidenceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("save_group_evidence: validation failed: %w", err)
	}
	teacherID, err := shared.ParseID(cmd.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("save_group_evidence: %w", err)
	}
	groupID, err := shared.ParseID(cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("save_group_evidence: %w", err)
	}
	classType, err := shared.ParseClassType(cmd.ClassType)
	if err != nil {
		return nil, fmt.Errorf("save_group_evidence: %w", err)
	}
	kind, err := shared.ParseEvidenceKind(cmd.Kind)
	if err != nil {
		return nil, fmt.Errorf("save_group_evidence: %w", err)
	}

	var portfolio *syllabus.GroupPortfolio
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := repos.Authorizer().AuthorizeTeacherForGroup(ctx, teacherID, groupID, classType); err != nil {
			return err
		}
		portfolio, err = repos.Portfolios.FindByGroupID(ctx, groupID)
		if err != nil {
			return shared.Internal("syllabus", "FindPortfolio", err)
		}
		if portfolio == nil {
			portfolio = syllabus.NewGroupPortfolio(groupID)
		}
		if err := portfolio.UpdateEvidence(kind, cmd.URL); err != nil {
			return err
		}
		if err := repos.Portfolios.Save(ctx, portfolio); err != nil {
			return shared.Internal("syllabus", "SavePortfolio", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save_group_evidence: %w", err)
	}
	return &SaveGroupEvidenceResult{Portfolio: portfolio}, nil
}
