package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// Action is an interactive action (button click) received from the chat platform
type Action struct {
	Namespace types.ActionNamespace
	ActionID  types.ActionID
	TeamID    string
	ChannelID string
	UserID    string
	Data      string // JSON encoded ActionPayload
}

// ActionPayload is the data embedded in an interactive action
type ActionPayload struct {
	ID    types.WorkflowID `json:"id"`
	Key   string           `json:"key,omitempty"`
	Value string           `json:"value,omitempty"`
}

// Answer returns the key/value answer carried by the payload
func (x *ActionPayload) Answer() Answer {
	return Answer{Key: x.Key, Value: x.Value}
}

// Encode serializes the payload to be embedded in a chat message
func (x ActionPayload) Encode() (string, error) {
	raw, err := json.Marshal(x)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode action payload")
	}
	return string(raw), nil
}

// Answer is a key/value answer for a workflow step
type Answer struct {
	Key   string
	Value string
}

// DecodeActionPayload decodes the payload of an action. The embedded workflow ID must be
// well-formed and belong to teamID. If withAnswer is true, a key is also required.
func DecodeActionPayload(data string, teamID string, withAnswer bool) (*ActionPayload, error) {
	var raw struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, goerr.Wrap(ErrInvalidActionPayload, "failed to parse action data as JSON",
			goerr.V("data", data),
			goerr.V("cause", err.Error()))
	}

	id, err := types.ParseWorkflowID(raw.ID)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidActionPayload, "action carries a malformed workflow ID",
			goerr.V("data", data),
			goerr.V("cause", err.Error()))
	}

	if id.TeamID() != teamID {
		return nil, goerr.Wrap(ErrInvalidActionPayload, "workflow ID belongs to another team",
			goerr.V("id", id),
			goerr.V("team_id", teamID))
	}

	if withAnswer && raw.Key == "" {
		return nil, goerr.Wrap(ErrInvalidActionPayload, "answer key is missing",
			goerr.V("data", data))
	}

	return &ActionPayload{
		ID:    id,
		Key:   raw.Key,
		Value: raw.Value,
	}, nil
}
