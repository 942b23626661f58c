package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// DefaultCollection is the Firestore collection storing release states
const DefaultCollection = "release_workflows"

// Firestore is a ReleaseStateRepository backed by Cloud Firestore
type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.ReleaseStateRepository = (*Firestore)(nil)

// NewFirestore connects to the Firestore database
func NewFirestore(ctx context.Context, projectID, databaseID, collection string) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Firestore{
		client:     client,
		collection: collection,
	}, nil
}

// Close closes the Firestore client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) doc(id types.WorkflowID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id.String())
}

func (r *Firestore) CreateIfAbsent(ctx context.Context, state *model.ReleaseState) (bool, error) {
	if _, err := r.doc(state.ID).Create(ctx, state); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to create release state", goerr.V("id", state.ID))
	}
	return true, nil
}

func (r *Firestore) Get(ctx context.Context, id types.WorkflowID) (*model.ReleaseState, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get release state", goerr.V("id", id))
	}

	var state model.ReleaseState
	if err := snap.DataTo(&state); err != nil {
		return nil, goerr.Wrap(err, "failed to decode release state", goerr.V("id", id))
	}
	return &state, nil
}

func (r *Firestore) Update(ctx context.Context, id types.WorkflowID, fn func(state *model.ReleaseState) error) (*model.ReleaseState, error) {
	ref := r.doc(id)
	var updated model.ReleaseState

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrWorkflowNotFound, "cannot update release state", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get release state in transaction", goerr.V("id", id))
		}

		var state model.ReleaseState
		if err := snap.DataTo(&state); err != nil {
			return goerr.Wrap(err, "failed to decode release state", goerr.V("id", id))
		}

		if err := fn(&state); err != nil {
			return err
		}

		if err := tx.Set(ref, &state); err != nil {
			return goerr.Wrap(err, "failed to set release state", goerr.V("id", id))
		}
		updated = state
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
