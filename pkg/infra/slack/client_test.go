package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
	slackinfra "github.com/m-mizutani/tagrelease/pkg/infra/slack"
)

type fakeSlackAPI struct {
	mu    sync.Mutex
	posts []url.Values
	fail  bool
}

func (f *fakeSlackAPI) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.posts = append(f.posts, r.PostForm)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.fail {
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
}

func newTestClient(t *testing.T, api *fakeSlackAPI) *slackinfra.Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat.postMessage", api.handler)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return slackinfra.NewClient("xoxb-test", slack.OptionAPIURL(ts.URL+"/"))
}

func TestConversation_Respond(t *testing.T) {
	api := &fakeSlackAPI{}
	client := newTestClient(t, api)

	conv := client.Conversation("C123", "1700000000.000001")
	gt.NoError(t, conv.Respond(context.Background(), "hello"))

	gt.A(t, api.posts).Length(1)
	gt.Value(t, api.posts[0].Get("channel")).Equal("C123")
	gt.Value(t, api.posts[0].Get("text")).Equal("hello")
	gt.Value(t, api.posts[0].Get("thread_ts")).Equal("1700000000.000001")
}

func TestConversation_RespondWithoutThread(t *testing.T) {
	api := &fakeSlackAPI{}
	client := newTestClient(t, api)

	gt.NoError(t, client.Conversation("C123", "").Respond(context.Background(), "hello"))
	gt.Value(t, api.posts[0].Get("thread_ts")).Equal("")
}

func TestConversation_RespondError(t *testing.T) {
	api := &fakeSlackAPI{fail: true}
	client := newTestClient(t, api)

	err := client.Conversation("C123", "").Respond(context.Background(), "hello")
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("channel_not_found")
}

func TestConversation_Prompt(t *testing.T) {
	api := &fakeSlackAPI{}
	client := newTestClient(t, api)

	id := types.WorkflowID("T1|mobile|release|abc")
	prompt := &model.Prompt{
		Text:      "Bump version?",
		Namespace: types.ActionNamespaceTagRelease,
		Choices: []model.Choice{
			{
				Label:    "Yes",
				ActionID: types.ActionConfirmVersionBump,
				Payload:  model.ActionPayload{ID: id, Key: "versionBump", Value: "yes"},
				Style:    model.ChoiceStylePrimary,
			},
			{
				Label:    "No",
				ActionID: types.ActionConfirmVersionBump,
				Payload:  model.ActionPayload{ID: id, Key: "versionBump", Value: "no"},
			},
			{
				Label:    "Cancel",
				ActionID: types.ActionCancel,
				Payload:  model.ActionPayload{ID: id},
				Style:    model.ChoiceStyleDanger,
			},
		},
	}

	gt.NoError(t, client.Conversation("C123", "").Prompt(context.Background(), prompt))
	gt.A(t, api.posts).Length(1)
	gt.Value(t, api.posts[0].Get("text")).Equal("Bump version?")

	var blocks []struct {
		Type     string `json:"type"`
		BlockID  string `json:"block_id"`
		Elements []struct {
			ActionID string `json:"action_id"`
			Value    string `json:"value"`
			Style    string `json:"style"`
		} `json:"elements"`
	}
	gt.NoError(t, json.Unmarshal([]byte(api.posts[0].Get("blocks")), &blocks))
	gt.A(t, blocks).Length(2)
	gt.Value(t, blocks[0].Type).Equal("section")

	actions := blocks[1]
	gt.Value(t, actions.Type).Equal("actions")
	gt.Value(t, actions.BlockID).Equal("tag-release")
	gt.A(t, actions.Elements).Length(3)

	gt.Value(t, actions.Elements[0].ActionID).Equal("confirm_version_bump")
	gt.Value(t, actions.Elements[0].Style).Equal("primary")
	gt.Value(t, actions.Elements[1].ActionID).Equal("confirm_version_bump#1")
	gt.Value(t, actions.Elements[2].ActionID).Equal("cancel")
	gt.Value(t, actions.Elements[2].Style).Equal("danger")

	payload, err := model.DecodeActionPayload(actions.Elements[1].Value, "T1", true)
	gt.NoError(t, err)
	gt.Value(t, payload.Value).Equal("no")
}
