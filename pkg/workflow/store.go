package workflow

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/singleflight"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// Store is the WorkflowStore of release workflows. States are kept in a
// ReleaseStateRepository, which also serializes transitions of a workflow.
type Store struct {
	repo  interfaces.ReleaseStateRepository
	group singleflight.Group
	now   func() time.Time
}

var _ interfaces.WorkflowStore = (*Store)(nil)

// Option is a functional option for Store
type Option func(*Store)

// WithClock replaces the clock used for state timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store on top of the repository
func NewStore(repo interfaces.ReleaseStateRepository, opts ...Option) *Store {
	s := &Store{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupOrCreate resolves the workflow, creating it from factory when it does not exist yet.
// Concurrent calls for the same ID in this process share a single resolution, and the
// repository guarantees only one state is stored across processes.
func (s *Store) LookupOrCreate(ctx context.Context, id types.WorkflowID, factory interfaces.InitialStateFactory) (interfaces.WorkflowInstance, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	_, err, _ := s.group.Do(id.String(), func() (any, error) {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current != nil {
			return nil, nil
		}

		if factory == nil {
			return nil, goerr.Wrap(model.ErrWorkflowNotFound, "no initial state factory given", goerr.V("id", id))
		}

		initial, err := factory()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build initial state", goerr.V("id", id))
		}
		if initial == nil || initial.ID != id {
			return nil, goerr.New("initial state does not match workflow ID", goerr.V("id", id))
		}

		created, err := s.repo.CreateIfAbsent(ctx, initial)
		if err != nil {
			return nil, err
		}
		if created {
			ctxlog.From(ctx).Info("Release workflow created",
				"id", id,
				"name", initial.Answers.Name,
				"version", initial.Answers.Version,
			)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return &instance{id: id, store: s}, nil
}

// Lookup resolves an existing workflow
func (s *Store) Lookup(ctx context.Context, id types.WorkflowID) (interfaces.WorkflowInstance, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, goerr.Wrap(model.ErrWorkflowNotFound, "release workflow does not exist or has expired", goerr.V("id", id))
	}

	return &instance{id: id, store: s}, nil
}
