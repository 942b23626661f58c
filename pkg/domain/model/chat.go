package model

import "github.com/m-mizutani/tagrelease/pkg/domain/types"

// MessageTrigger describes how a chat message reached the bot
type MessageTrigger string

const (
	TriggerDirectMessage MessageTrigger = "direct_message"
	TriggerDirectMention MessageTrigger = "direct_mention"
	TriggerMention       MessageTrigger = "mention"
)

// ChatMessage is an inbound chat message addressed to the bot
type ChatMessage struct {
	TeamID    string
	ChannelID string
	ThreadTS  string
	UserID    string
	Text      string
	Trigger   MessageTrigger
}

// ChoiceStyle is a visual hint for a prompt choice
type ChoiceStyle string

const (
	ChoiceStyleDefault ChoiceStyle = ""
	ChoiceStylePrimary ChoiceStyle = "primary"
	ChoiceStyleDanger  ChoiceStyle = "danger"
)

// Choice is a button of a Prompt. Clicking it emits an action with ActionID and Payload.
type Choice struct {
	Label    string
	ActionID types.ActionID
	Payload  ActionPayload
	Style    ChoiceStyle
}

// Prompt is a message asking the user to pick one of the choices
type Prompt struct {
	Text      string
	Namespace types.ActionNamespace
	Choices   []Choice
}
