package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// UpdateTopicStatusCommand marks a syllabus topic as taught or pending.
type UpdateTopicStatusCommand struct {
	TeacherID string
	TopicID   string
	Status    string
}

// Validate validates the command.
func (c UpdateTopicStatusCommand) Validate() error {
	if err := required("update_topic_status", "teacher_id", c.TeacherID); err != nil {
		return err
	}
	return required("update_topic_status", "topic_id", c.TopicID)
}

// UpdateTopicStatusResult contains the stored status.
type UpdateTopicStatusResult struct {
	TopicID string
	Status  shared.TopicStatus
}

// UpdateTopicStatusHandler handles the UpdateTopicStatusCommand.
type UpdateTopicStatusHandler struct {
	txManager uow.TxManager
}

// NewUpdateTopicStatusHandler creates a new UpdateTopicStatusHandler.
func NewUpdateTopicStatusHandler(txManager uow.TxManager) *UpdateTopicStatusHandler {
	return &UpdateTopicStatusHandler{txManager: txManager}
}

// Handle executes the command. Only the professor of the topic's theory
// group may change it.
func (h *UpdateTopicStatusHandler) Handle(ctx context.Context, cmd UpdateTopicStatusCommand) (*UpdateTopicStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_topic_status: validation failed: %w", err)
	}
	teacherID, err := shared.ParseID(cmd.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("update_topic_status: %w", err)
	}
	topicID, err := shared.ParseID(cmd.TopicID)
	if err != nil {
		return nil, fmt.Errorf("update_topic_status: %w", err)
	}
	status, err := shared.ParseTopicStatus(cmd.Status)
	if err != nil {
		return nil, fmt.Errorf("update_topic_status: %w", err)
	}

	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		topic, err := repos.Contents.FindByID(ctx, topicID)
		if err != nil {
			return shared.Internal("syllabus", "FindTopic", err)
		}
		if topic == nil {
			return shared.ErrTopicNotFound.Withf("topic %s not found", topicID)
		}
		if err := repos.Authorizer().AuthorizeTeacherForGroup(ctx, teacherID, topic.TheoryGroupID, shared.ClassTheory); err != nil {
			return err
		}
		if status == shared.TopicCompleted {
			topic.MarkAsCompleted()
		} else {
			topic.MarkAsPending()
		}
		if err := repos.Contents.Save(ctx, topic); err != nil {
			return shared.Internal("syllabus", "SaveTopic", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update_topic_status: %w", err)
	}
	return &UpdateTopicStatusResult{TopicID: topicID.String(), Status: status}, nil
}
