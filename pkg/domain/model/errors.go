package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrWorkflowNotFound is returned when an action refers to a workflow that does not exist
	ErrWorkflowNotFound = goerr.New("workflow not found")

	// ErrInvalidTransition is returned when a workflow cannot accept the requested transition,
	// e.g. answering a workflow that was already cancelled
	ErrInvalidTransition = goerr.New("invalid workflow transition")

	// ErrInvalidActionPayload is returned when the data attached to an interactive action cannot be used
	ErrInvalidActionPayload = goerr.New("invalid action payload")

	// ErrUnknownAction is returned for actions that have no route
	ErrUnknownAction = goerr.New("unknown action")
)
