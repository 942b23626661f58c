package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
	"github.com/m-mizutani/tagrelease/pkg/repository"
)

func newState(teamID string) *model.ReleaseState {
	cmd := &model.ReleaseCommand{
		Name:      "Foo",
		Version:   "1.2.3",
		Notes:     []string{"a", "b"},
		Platforms: []string{"ios"},
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	return model.NewReleaseState(types.NewWorkflowID(teamID), model.Repository{User: "u", Name: "r"}, cmd, now)
}

func testRepository(t *testing.T, repo interfaces.ReleaseStateRepository) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		state := newState("T1")

		created, err := repo.CreateIfAbsent(ctx, state)
		gt.NoError(t, err)
		gt.True(t, created)

		got, err := repo.Get(ctx, state.ID)
		gt.NoError(t, err)
		gt.Value(t, got).NotNil()
		gt.Value(t, got.ID).Equal(state.ID)
		gt.Value(t, got.Answers.Notes).Equal([]string{"a", "b"})
		gt.True(t, got.Answers.VersionBump)
		gt.Value(t, got.Step).Equal(types.StepNew)
	})

	t.Run("create twice keeps the first state", func(t *testing.T) {
		state := newState("T1")

		created, err := repo.CreateIfAbsent(ctx, state)
		gt.NoError(t, err)
		gt.True(t, created)

		other := state.Copy()
		other.Answers.Name = "Bar"
		created, err = repo.CreateIfAbsent(ctx, other)
		gt.NoError(t, err)
		gt.False(t, created)

		got, err := repo.Get(ctx, state.ID)
		gt.NoError(t, err)
		gt.Value(t, got.Answers.Name).Equal("Foo")
	})

	t.Run("get missing state", func(t *testing.T) {
		got, err := repo.Get(ctx, types.NewWorkflowID("T1"))
		gt.NoError(t, err)
		gt.Value(t, got).Nil()
	})

	t.Run("update", func(t *testing.T) {
		state := newState("T1")
		_, err := repo.CreateIfAbsent(ctx, state)
		gt.NoError(t, err)

		updated, err := repo.Update(ctx, state.ID, func(s *model.ReleaseState) error {
			s.Step = types.StepConfirmRelease
			return nil
		})
		gt.NoError(t, err)
		gt.Value(t, updated.Step).Equal(types.StepConfirmRelease)

		got, err := repo.Get(ctx, state.ID)
		gt.NoError(t, err)
		gt.Value(t, got.Step).Equal(types.StepConfirmRelease)
	})

	t.Run("update rejected by fn leaves state unchanged", func(t *testing.T) {
		state := newState("T1")
		_, err := repo.CreateIfAbsent(ctx, state)
		gt.NoError(t, err)

		rejected := errors.New("rejected")
		_, err = repo.Update(ctx, state.ID, func(s *model.ReleaseState) error {
			s.Step = types.StepReleased
			return rejected
		})
		gt.True(t, errors.Is(err, rejected))

		got, err := repo.Get(ctx, state.ID)
		gt.NoError(t, err)
		gt.Value(t, got.Step).Equal(types.StepNew)
	})

	t.Run("update missing state", func(t *testing.T) {
		_, err := repo.Update(ctx, types.NewWorkflowID("T1"), func(s *model.ReleaseState) error {
			return nil
		})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrWorkflowNotFound))
	})

	t.Run("concurrent creation creates once", func(t *testing.T) {
		state := newState("T1")

		var wg sync.WaitGroup
		var mu sync.Mutex
		createdCount := 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := repo.CreateIfAbsent(ctx, state)
				if err != nil {
					t.Error(err)
					return
				}
				if created {
					mu.Lock()
					createdCount++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		gt.Number(t, createdCount).Equal(1)
	})
}

func TestMemory(t *testing.T) {
	testRepository(t, repository.NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	state := newState("T1")

	_, err := repo.CreateIfAbsent(ctx, state)
	gt.NoError(t, err)

	state.Answers.Notes[0] = "changed"
	got, err := repo.Get(ctx, state.ID)
	gt.NoError(t, err)
	gt.Value(t, got.Answers.Notes[0]).Equal("a")

	got.Step = types.StepReleased
	again, err := repo.Get(ctx, state.ID)
	gt.NoError(t, err)
	gt.Value(t, again.Step).Equal(types.StepNew)
}

func TestFirestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID is not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	repo, err := repository.NewFirestore(ctx, projectID, databaseID, "test_release_workflows")
	gt.NoError(t, err)
	defer func() {
		_ = repo.Close()
	}()

	testRepository(t, repo)
}
