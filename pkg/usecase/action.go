package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
	"github.com/m-mizutani/tagrelease/pkg/utils/errutil"
)

type actionRoute struct {
	namespace types.ActionNamespace
	actionID  types.ActionID
}

type actionHandler func(ctx context.Context, conv interfaces.Conversation, action *model.Action) error

func (uc *releaseUseCase) actionRoutes() map[actionRoute]actionHandler {
	return map[actionRoute]actionHandler{
		{types.ActionNamespaceTagRelease, types.ActionConfirmVersionBump}: uc.answer,
		{types.ActionNamespaceTagRelease, types.ActionConfirmRelease}:     uc.answer,
		{types.ActionNamespaceTagRelease, types.ActionCancel}:             uc.cancel,
	}
}

// HandleAction routes an interactive action by namespace and action ID
func (uc *releaseUseCase) HandleAction(ctx context.Context, conv interfaces.Conversation, action *model.Action) error {
	ctxlog.From(ctx).Info("Handling release action",
		"namespace", action.Namespace,
		"action_id", action.ActionID,
		"user_id", action.UserID,
	)

	handler, ok := uc.routes[actionRoute{action.Namespace, action.ActionID}]
	if !ok {
		err := goerr.Wrap(model.ErrUnknownAction, "no route for action",
			goerr.V("namespace", action.Namespace),
			goerr.V("action_id", action.ActionID))
		return errutil.Report(ctx, conv, err)
	}

	if err := handler(ctx, conv, action); err != nil {
		return errutil.Report(ctx, conv, err)
	}
	return nil
}

func (uc *releaseUseCase) answer(ctx context.Context, conv interfaces.Conversation, action *model.Action) error {
	payload, err := model.DecodeActionPayload(action.Data, action.TeamID, true)
	if err != nil {
		return err
	}
	return uc.dispatcher.Answer(ctx, payload.ID, conv, payload.Answer())
}

func (uc *releaseUseCase) cancel(ctx context.Context, conv interfaces.Conversation, action *model.Action) error {
	payload, err := model.DecodeActionPayload(action.Data, action.TeamID, false)
	if err != nil {
		return err
	}
	return uc.dispatcher.Cancel(ctx, payload.ID, conv)
}
