package types

import (
	"regexp"
	"strings"

	"github.com/lithammer/shortuuid/v3"
	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidWorkflowID is returned when a workflow ID does not have the expected shape
var ErrInvalidWorkflowID = goerr.New("invalid workflow ID")

const (
	workflowIDSeparator = "|"
	workflowDomain      = "mobile"
	workflowKind        = "release"
)

var shortIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)

// WorkflowID identifies a single release workflow instance.
// Format: {team_id}|mobile|release|{short_id}
type WorkflowID string

// NewWorkflowID generates a new workflow ID for the team with a fresh random component
func NewWorkflowID(teamID string) WorkflowID {
	return WorkflowID(strings.Join([]string{
		teamID,
		workflowDomain,
		workflowKind,
		shortuuid.New(),
	}, workflowIDSeparator))
}

// ParseWorkflowID parses and validates a workflow ID received from outside
func ParseWorkflowID(s string) (WorkflowID, error) {
	id := WorkflowID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks the shape of the workflow ID
func (x WorkflowID) Validate() error {
	parts := strings.Split(string(x), workflowIDSeparator)
	if len(parts) != 4 {
		return goerr.Wrap(ErrInvalidWorkflowID, "unexpected number of segments", goerr.V("id", string(x)))
	}
	if parts[0] == "" {
		return goerr.Wrap(ErrInvalidWorkflowID, "team ID is empty", goerr.V("id", string(x)))
	}
	if parts[1] != workflowDomain || parts[2] != workflowKind {
		return goerr.Wrap(ErrInvalidWorkflowID, "unexpected workflow kind", goerr.V("id", string(x)))
	}
	if !shortIDPattern.MatchString(parts[3]) {
		return goerr.Wrap(ErrInvalidWorkflowID, "invalid random component", goerr.V("id", string(x)))
	}
	return nil
}

// TeamID returns the team segment of the workflow ID. Empty if the ID is malformed.
func (x WorkflowID) TeamID() string {
	team, _, found := strings.Cut(string(x), workflowIDSeparator)
	if !found {
		return ""
	}
	return team
}

func (x WorkflowID) String() string { return string(x) }
