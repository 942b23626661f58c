package workflow

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

// instance drives a single release workflow:
//
//	new -> confirm_version_bump (only if a version was given) -> confirm_release -> released
//
// Any non-terminal step may move to cancelled.
type instance struct {
	id    types.WorkflowID
	store *Store
}

func (x *instance) Start(ctx context.Context, conv interfaces.Conversation) error {
	state, err := x.transit(ctx, "start", func(s *model.ReleaseState) error {
		if s.Step != types.StepNew {
			return invalidTransition(s, "start")
		}
		if s.Answers.VersionBump {
			s.Step = types.StepConfirmVersionBump
		} else {
			s.Step = types.StepConfirmRelease
		}
		return nil
	})
	if err != nil {
		return err
	}

	return x.notify(ctx, conv, state)
}

func (x *instance) Answer(ctx context.Context, conv interfaces.Conversation, answer model.Answer) error {
	yes, err := parseYesNo(answer.Value)
	if err != nil {
		return err
	}

	state, err := x.transit(ctx, "answer", func(s *model.ReleaseState) error {
		switch {
		case s.Step == types.StepConfirmVersionBump && answer.Key == types.AnswerKeyVersionBump:
			s.Answers.VersionBump = yes
			s.Step = types.StepConfirmRelease

		case s.Step == types.StepConfirmRelease && answer.Key == types.AnswerKeyRelease:
			if yes {
				s.Step = types.StepReleased
			} else {
				s.Step = types.StepCancelled
			}

		default:
			return goerr.Wrap(invalidTransition(s, "answer"), "unexpected answer",
				goerr.V("key", answer.Key))
		}
		return nil
	})
	if err != nil {
		return err
	}

	return x.notify(ctx, conv, state)
}

func (x *instance) Cancel(ctx context.Context, conv interfaces.Conversation) error {
	state, err := x.transit(ctx, "cancel", func(s *model.ReleaseState) error {
		if s.Step.IsTerminal() {
			return invalidTransition(s, "cancel")
		}
		s.Step = types.StepCancelled
		return nil
	})
	if err != nil {
		return err
	}

	return x.notify(ctx, conv, state)
}

// transit applies fn to the stored state. fn may run more than once.
func (x *instance) transit(ctx context.Context, name string, fn func(s *model.ReleaseState) error) (*model.ReleaseState, error) {
	var from types.Step
	state, err := x.store.repo.Update(ctx, x.id, func(s *model.ReleaseState) error {
		from = s.Step
		if err := fn(s); err != nil {
			return err
		}
		s.UpdatedAt = x.store.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Release workflow transited",
		"id", x.id,
		"transition", name,
		"from", from,
		"to", state.Step,
	)
	return state, nil
}

// notify tells the conversation what the workflow needs next
func (x *instance) notify(ctx context.Context, conv interfaces.Conversation, state *model.ReleaseState) error {
	var err error
	switch state.Step {
	case types.StepConfirmVersionBump:
		err = conv.Prompt(ctx, versionBumpPrompt(state))
	case types.StepConfirmRelease:
		err = conv.Prompt(ctx, releasePrompt(state))
	case types.StepReleased:
		err = conv.Respond(ctx, releasedMessage(state))
	case types.StepCancelled:
		err = conv.Respond(ctx, cancelledMessage(state))
	default:
		return goerr.New("no message for workflow step", goerr.V("id", state.ID), goerr.V("step", state.Step))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to notify conversation", goerr.V("id", state.ID), goerr.V("step", state.Step))
	}
	return nil
}

func invalidTransition(s *model.ReleaseState, action string) error {
	return goerr.Wrap(model.ErrInvalidTransition, "workflow cannot accept the action in its current step",
		goerr.V("id", s.ID),
		goerr.V("step", s.Step),
		goerr.V("action", action))
}

func parseYesNo(v string) (bool, error) {
	switch v {
	case types.AnswerYes, "true":
		return true, nil
	case types.AnswerNo, "false":
		return false, nil
	default:
		return false, goerr.Wrap(model.ErrInvalidActionPayload, "answer must be yes or no", goerr.V("value", v))
	}
}
