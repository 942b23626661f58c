package model

import (
	"time"

	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// Repository is the source code repository a release belongs to
type Repository struct {
	User string `json:"user" firestore:"user" toml:"user"`
	Name string `json:"name" firestore:"name" toml:"name"`
}

// Versions holds version information of a release
type Versions struct {
	Latest string `json:"latest,omitempty" firestore:"latest"`
}

// Answers holds what the user answered so far for the release
type Answers struct {
	Name        string   `json:"name" firestore:"name"`
	Version     string   `json:"version,omitempty" firestore:"version"`
	VersionBump bool     `json:"versionBump" firestore:"version_bump"`
	Notes       []string `json:"notes" firestore:"notes"`
	Platforms   []string `json:"platforms" firestore:"platforms"`
}

// ReleaseState is the state of a release workflow. It is owned by the workflow store once created.
type ReleaseState struct {
	ID        types.WorkflowID `json:"id" firestore:"id"`
	Repo      Repository       `json:"repo" firestore:"repo"`
	Versions  Versions         `json:"versions" firestore:"versions"`
	Answers   Answers          `json:"answers" firestore:"answers"`
	Step      types.Step       `json:"step" firestore:"step"`
	CreatedAt time.Time        `json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" firestore:"updated_at"`
}

// NewReleaseState builds the initial state of a release workflow from a validated command
func NewReleaseState(id types.WorkflowID, repo Repository, cmd *ReleaseCommand, now time.Time) *ReleaseState {
	return &ReleaseState{
		ID:   id,
		Repo: repo,
		Versions: Versions{
			Latest: cmd.Version,
		},
		Answers: Answers{
			Name:        cmd.Name,
			Version:     cmd.Version,
			VersionBump: cmd.HasVersion(),
			Notes:       append([]string{}, cmd.Notes...),
			Platforms:   append([]string{}, cmd.Platforms...),
		},
		Step:      types.StepNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Copy returns a deep copy of the state
func (x *ReleaseState) Copy() *ReleaseState {
	c := *x
	c.Answers.Notes = append([]string(nil), x.Answers.Notes...)
	c.Answers.Platforms = append([]string(nil), x.Answers.Platforms...)
	return &c
}
