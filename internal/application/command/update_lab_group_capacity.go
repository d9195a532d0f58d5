package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// UpdateLabGroupCapacityCommand changes the number of seats of a lab group.
type UpdateLabGroupCapacityCommand struct {
	LabGroupID string
	Capacity   int
}

// Validate validates the command.
func (c UpdateLabGroupCapacityCommand) Validate() error {
	return required("update_lab_group_capacity", "lab_group_id", c.LabGroupID)
}

// UpdateLabGroupCapacityResult contains the new counters.
type UpdateLabGroupCapacityResult struct {
	LabGroupID        string
	Capacity          int
	CurrentEnrollment int
}

// UpdateLabGroupCapacityHandler handles the UpdateLabGroupCapacityCommand.
type UpdateLabGroupCapacityHandler struct {
	txManager uow.TxManager
}

// NewUpdateLabGroupCapacityHandler creates a new UpdateLabGroupCapacityHandler.
func NewUpdateLabGroupCapacityHandler(txManager uow.TxManager) *UpdateLabGroupCapacityHandler {
	return &UpdateLabGroupCapacityHandler{txManager: txManager}
}

// Handle executes the command. The group row is locked so the check against
// the current enrollment cannot race with a concurrent lab enrollment.
func (h *UpdateLabGroupCapacityHandler) Handle(ctx context.Context, cmd UpdateLabGroupCapacityCommand) (*UpdateLabGroupCapacityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_lab_group_capacity: validation failed: %w", err)
	}
	id, err := shared.ParseID(cmd.LabGroupID)
	if err != nil {
		return nil, fmt.Errorf("update_lab_group_capacity: %w", err)
	}

	var result *UpdateLabGroupCapacityResult
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		group, err := repos.LabGroups.FindByIDForUpdate(ctx, id)
		if err != nil {
			return shared.Internal("lab", "FindByIDForUpdate", err)
		}
		if group == nil {
			return shared.ErrLabGroupNotFound.Withf("lab group %s not found", id)
		}
		if err := group.UpdateCapacity(cmd.Capacity); err != nil {
			return err
		}
		if err := repos.LabGroups.Save(ctx, group); err != nil {
			return shared.Internal("lab", "Save", err)
		}
		result = &UpdateLabGroupCapacityResult{
			LabGroupID:        group.ID.String(),
			Capacity:          group.Capacity,
			CurrentEnrollment: group.CurrentEnrollment,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update_lab_group_capacity: %w", err)
	}
	return result, nil
}
