package interfaces

import (
	"context"

	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// InitialStateFactory builds the initial state of a workflow. It is called only
// when no workflow exists for the identity.
type InitialStateFactory func() (*model.ReleaseState, error)

// WorkflowStore owns creation, lookup and transitions of release workflows
type WorkflowStore interface {
	// LookupOrCreate resolves the workflow for id, creating it from factory if absent.
	// At most one workflow is created per id.
	LookupOrCreate(ctx context.Context, id types.WorkflowID, factory InitialStateFactory) (WorkflowInstance, error)

	// Lookup resolves an existing workflow. It fails with ErrWorkflowNotFound if absent.
	Lookup(ctx context.Context, id types.WorkflowID) (WorkflowInstance, error)
}

// WorkflowInstance is a handle to a single in-flight workflow
type WorkflowInstance interface {
	Start(ctx context.Context, conv Conversation) error
	Answer(ctx context.Context, conv Conversation, answer model.Answer) error
	Cancel(ctx context.Context, conv Conversation) error
}

// ReleaseStateRepository persists release states
type ReleaseStateRepository interface {
	// CreateIfAbsent stores state unless a state with the same ID exists.
	// It returns true if the state was created.
	CreateIfAbsent(ctx context.Context, state *model.ReleaseState) (bool, error)

	// Get returns the state, or nil if not found
	Get(ctx context.Context, id types.WorkflowID) (*model.ReleaseState, error)

	// Update applies fn to the current state and stores the result atomically.
	// fn may be called more than once and must not have side effects.
	Update(ctx context.Context, id types.WorkflowID, fn func(state *model.ReleaseState) error) (*model.ReleaseState, error)
}
