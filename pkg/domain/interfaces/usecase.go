package interfaces

import (
	"context"

	"github.com/m-mizutani/tagrelease/pkg/domain/model"
)

// ReleaseUseCase handles chat messages and interactive actions of the release workflow.
// Failures are reported to the conversation; a returned error means the report itself failed.
type ReleaseUseCase interface {
	// HandleMessage handles a chat message, starting a release on "create release"
	HandleMessage(ctx context.Context, conv Conversation, msg *model.ChatMessage) error

	// HandleAction routes an interactive action to the workflow it belongs to
	HandleAction(ctx context.Context, conv Conversation, action *model.Action) error
}
