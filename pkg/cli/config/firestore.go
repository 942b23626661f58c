package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/repository"
)

// Firestore holds workflow state storage configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
	Collection string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of Firestore. Workflow states are kept in memory if empty",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("TAGRELEASE_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("TAGRELEASE_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection of release workflows",
			Value:       repository.DefaultCollection,
			Destination: &c.Collection,
			Sources:     cli.EnvVars("TAGRELEASE_FIRESTORE_COLLECTION"),
		},
	}
}

// NewRepository returns the Firestore repository if configured, otherwise an in-memory one.
// The returned function releases the repository.
func (c *Firestore) NewRepository(ctx context.Context) (interfaces.ReleaseStateRepository, func(), error) {
	if c.ProjectID == "" {
		return repository.NewMemory(), func() {}, nil
	}

	repo, err := repository.NewFirestore(ctx, c.ProjectID, c.DatabaseID, c.Collection)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}
