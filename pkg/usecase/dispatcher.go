package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// WorkflowDispatcher resolves workflow instances in the store and invokes their transitions.
// It holds no state and never retries; errors go back to the caller.
type WorkflowDispatcher struct {
	store interfaces.WorkflowStore
}

// NewWorkflowDispatcher creates a WorkflowDispatcher
func NewWorkflowDispatcher(store interfaces.WorkflowStore) *WorkflowDispatcher {
	return &WorkflowDispatcher{store: store}
}

// Start resolves or creates the workflow and starts it. factory is invoked only
// if the workflow does not exist yet.
func (d *WorkflowDispatcher) Start(ctx context.Context, id types.WorkflowID, factory interfaces.InitialStateFactory, conv interfaces.Conversation) error {
	inst, err := d.store.LookupOrCreate(ctx, id, factory)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve release workflow", goerr.V("id", id))
	}

	if err := inst.Start(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to start release workflow", goerr.V("id", id))
	}
	return nil
}

// Answer forwards an answer to an existing workflow
func (d *WorkflowDispatcher) Answer(ctx context.Context, id types.WorkflowID, conv interfaces.Conversation, answer model.Answer) error {
	inst, err := d.store.Lookup(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to look up release workflow", goerr.V("id", id))
	}

	if err := inst.Answer(ctx, conv, answer); err != nil {
		return goerr.Wrap(err, "failed to answer release workflow",
			goerr.V("id", id),
			goerr.V("key", answer.Key),
			goerr.V("value", answer.Value))
	}
	return nil
}

// Cancel cancels an existing workflow
func (d *WorkflowDispatcher) Cancel(ctx context.Context, id types.WorkflowID, conv interfaces.Conversation) error {
	inst, err := d.store.Lookup(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to look up release workflow", goerr.V("id", id))
	}

	if err := inst.Cancel(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to cancel release workflow", goerr.V("id", id))
	}
	return nil
}
