package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// Memory is an in-process ReleaseStateRepository. States are lost on restart.
type Memory struct {
	mu     sync.Mutex
	states map[types.WorkflowID]*model.ReleaseState
}

var _ interfaces.ReleaseStateRepository = (*Memory)(nil)

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		states: make(map[types.WorkflowID]*model.ReleaseState),
	}
}

func (r *Memory) CreateIfAbsent(ctx context.Context, state *model.ReleaseState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.states[state.ID]; ok {
		return false, nil
	}
	r.states[state.ID] = state.Copy()
	return true, nil
}

func (r *Memory) Get(ctx context.Context, id types.WorkflowID) (*model.ReleaseState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[id]
	if !ok {
		return nil, nil
	}
	return state.Copy(), nil
}

func (r *Memory) Update(ctx context.Context, id types.WorkflowID, fn func(state *model.ReleaseState) error) (*model.ReleaseState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.states[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrWorkflowNotFound, "cannot update release state", goerr.V("id", id))
	}

	next := current.Copy()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.states[id] = next

	return next.Copy(), nil
}
