package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
	slackinfra "github.com/m-mizutani/tagrelease/pkg/infra/slack"
)

// SlackHandler receives Slack Events API and interactivity requests.
// Requests are acknowledged immediately and processed by the dispatcher.
type SlackHandler struct {
	releaseUC  interfaces.ReleaseUseCase
	chat       interfaces.ChatClient
	dispatcher Dispatcher
}

// NewSlackHandler creates a new SlackHandler
func NewSlackHandler(releaseUC interfaces.ReleaseUseCase, chat interfaces.ChatClient, dispatcher Dispatcher) *SlackHandler {
	return &SlackHandler{
		releaseUC:  releaseUC,
		chat:       chat,
		dispatcher: dispatcher,
	}
}

// HandleEvent processes Events API requests
func (h *SlackHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		logger.Error("Failed to parse slack event", "error", err)
		writeError(ctx, w, goerr.Wrap(err, "invalid slack event"), http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			writeError(ctx, w, goerr.Wrap(err, "invalid url_verification payload"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))
		return

	case slackevents.CallbackEvent:
		if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
			logger.Info("Dropping retried slack event",
				"retry_num", retry,
				"retry_reason", r.Header.Get("X-Slack-Retry-Reason"),
			)
			writeOK(ctx, w)
			return
		}

		if msg := toChatMessage(event); msg != nil {
			conv := h.chat.Conversation(msg.ChannelID, msg.ThreadTS)
			h.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
				return h.releaseUC.HandleMessage(ctx, conv, msg)
			})
		}
		writeOK(ctx, w)
		return

	default:
		logger.Info("Ignoring slack event", "type", event.Type)
		writeOK(ctx, w)
	}
}

// toChatMessage converts the inner event to a ChatMessage. It returns nil for events the bot does not handle.
func toChatMessage(event slackevents.EventsAPIEvent) *model.ChatMessage {
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		if ev.BotID != "" {
			return nil
		}
		trigger := model.TriggerMention
		if strings.HasPrefix(strings.TrimSpace(ev.Text), "<@") {
			trigger = model.TriggerDirectMention
		}
		return &model.ChatMessage{
			TeamID:    event.TeamID,
			ChannelID: ev.Channel,
			ThreadTS:  threadOf(ev.ThreadTimeStamp, ev.TimeStamp),
			UserID:    ev.User,
			Text:      ev.Text,
			Trigger:   trigger,
		}

	case *slackevents.MessageEvent:
		if ev.ChannelType != "im" || ev.BotID != "" || ev.SubType != "" {
			return nil
		}
		return &model.ChatMessage{
			TeamID:    event.TeamID,
			ChannelID: ev.Channel,
			ThreadTS:  ev.ThreadTimeStamp,
			UserID:    ev.User,
			Text:      ev.Text,
			Trigger:   model.TriggerDirectMessage,
		}
	}

	return nil
}

// HandleInteraction processes interactivity requests (button clicks)
func (h *SlackHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	if err := r.ParseForm(); err != nil {
		writeError(ctx, w, goerr.Wrap(err, "failed to parse form"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &callback); err != nil {
		logger.Error("Failed to parse interaction payload", "error", err)
		writeError(ctx, w, goerr.Wrap(err, "invalid interaction payload"), http.StatusBadRequest)
		return
	}

	actions := toActions(&callback)
	if len(actions) == 0 {
		logger.Info("Ignoring interaction",
			"type", callback.Type,
			"callback_id", callback.CallbackID,
		)
		writeOK(ctx, w)
		return
	}

	conv := h.chat.Conversation(callback.Channel.ID, threadOf(callback.Message.ThreadTimestamp, callback.Message.Timestamp))
	for _, action := range actions {
		h.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
			return h.releaseUC.HandleAction(ctx, conv, action)
		})
	}
	writeOK(ctx, w)
}

// toActions extracts release actions from block actions (block_id is the namespace)
// and legacy interactive messages (callback_id is the namespace, action name the action ID).
func toActions(callback *slack.InteractionCallback) []*model.Action {
	newAction := func(namespace, actionID, value string) *model.Action {
		return &model.Action{
			Namespace: types.ActionNamespace(namespace),
			ActionID:  types.ActionID(trimActionSuffix(actionID)),
			TeamID:    callback.Team.ID,
			ChannelID: callback.Channel.ID,
			UserID:    callback.User.ID,
			Data:      value,
		}
	}

	var actions []*model.Action
	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		for _, a := range callback.ActionCallback.BlockActions {
			if a.BlockID != string(types.ActionNamespaceTagRelease) {
				continue
			}
			actions = append(actions, newAction(a.BlockID, a.ActionID, a.Value))
		}

	case slack.InteractionTypeInteractionMessage:
		if callback.CallbackID != string(types.ActionNamespaceTagRelease) {
			return nil
		}
		for _, a := range callback.ActionCallback.AttachmentActions {
			actions = append(actions, newAction(callback.CallbackID, a.Name, a.Value))
		}
	}

	return actions
}

func trimActionSuffix(actionID string) string {
	id, _, _ := strings.Cut(actionID, slackinfra.ActionIDSeparator)
	return id
}

// threadOf returns the thread to reply to: the existing thread, or a new thread under ts
func threadOf(threadTS, ts string) string {
	if threadTS != "" {
		return threadTS
	}
	return ts
}

func writeOK(ctx context.Context, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	}); err != nil {
		ctxlog.From(ctx).Error("Failed to encode success response", "error", err)
	}
}
