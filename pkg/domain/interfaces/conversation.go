package interfaces

import (
	"context"

	"github.com/m-mizutani/tagrelease/pkg/domain/model"
)

// Conversation is the chat exchange an inbound message or action belongs to
type Conversation interface {
	// Respond posts a text message to the conversation
	Respond(ctx context.Context, text string) error

	// Prompt posts a message with choices that emit interactive actions
	Prompt(ctx context.Context, prompt *model.Prompt) error
}

// ChatClient opens conversations on the chat platform
type ChatClient interface {
	Conversation(channelID, threadTS string) Conversation
}
