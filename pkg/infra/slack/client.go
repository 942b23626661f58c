package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
)

// Client posts messages through the Slack Web API
type Client struct {
	api *slack.Client
}

var _ interfaces.ChatClient = (*Client)(nil)

// NewClient creates a Slack client with the bot token. Options are passed to slack-go,
// e.g. slack.OptionAPIURL for testing.
func NewClient(token string, opts ...slack.Option) *Client {
	return &Client{
		api: slack.New(token, opts...),
	}
}

// Conversation returns the conversation in the channel. If threadTS is given, replies go to the thread.
func (c *Client) Conversation(channelID, threadTS string) interfaces.Conversation {
	return &conversation{
		api:       c.api,
		channelID: channelID,
		threadTS:  threadTS,
	}
}

type conversation struct {
	api       *slack.Client
	channelID string
	threadTS  string
}

func (x *conversation) Respond(ctx context.Context, text string) error {
	return x.post(ctx, slack.MsgOptionText(text, false))
}

func (x *conversation) Prompt(ctx context.Context, prompt *model.Prompt) error {
	blocks, err := buildPromptBlocks(prompt)
	if err != nil {
		return err
	}

	return x.post(ctx,
		slack.MsgOptionText(prompt.Text, false),
		slack.MsgOptionBlocks(blocks...),
	)
}

func (x *conversation) post(ctx context.Context, opts ...slack.MsgOption) error {
	if x.threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(x.threadTS))
	}

	if _, _, err := x.api.PostMessageContext(ctx, x.channelID, opts...); err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("channel_id", x.channelID),
			goerr.V("thread_ts", x.threadTS))
	}
	return nil
}

// ActionIDSeparator separates the action ID from a suffix that keeps action_id unique
// within a block when several buttons share an action ID.
const ActionIDSeparator = "#"

func buildPromptBlocks(prompt *model.Prompt) ([]slack.Block, error) {
	elements := make([]slack.BlockElement, 0, len(prompt.Choices))
	used := make(map[string]int)
	for _, choice := range prompt.Choices {
		value, err := choice.Payload.Encode()
		if err != nil {
			return nil, err
		}

		actionID := string(choice.ActionID)
		if n := used[actionID]; n > 0 {
			actionID = fmt.Sprintf("%s%s%d", actionID, ActionIDSeparator, n)
		}
		used[string(choice.ActionID)]++

		button := slack.NewButtonBlockElement(
			actionID,
			value,
			slack.NewTextBlockObject(slack.PlainTextType, choice.Label, false, false),
		)
		switch choice.Style {
		case model.ChoiceStylePrimary:
			button = button.WithStyle(slack.StylePrimary)
		case model.ChoiceStyleDanger:
			button = button.WithStyle(slack.StyleDanger)
		}
		elements = append(elements, button)
	}

	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, prompt.Text, false, false),
			nil, nil,
		),
		slack.NewActionBlock(string(prompt.Namespace), elements...),
	}, nil
}
