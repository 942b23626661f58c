package usecase

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/tagrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
	"github.com/m-mizutani/tagrelease/pkg/utils/errutil"
)

var createReleasePattern = regexp.MustCompile(`(?is)create release(.*)`)

type releaseUseCase struct {
	dispatcher *WorkflowDispatcher
	repo       model.Repository
	newID      func(teamID string) types.WorkflowID
	now        func() time.Time
	parseOpts  []model.ParseOption
	routes     map[actionRoute]actionHandler
}

var _ interfaces.ReleaseUseCase = (*releaseUseCase)(nil)

// Option is a functional option for the release use case
type Option func(*releaseUseCase)

// WithIDGenerator replaces the workflow ID generator
func WithIDGenerator(fn func(teamID string) types.WorkflowID) Option {
	return func(uc *releaseUseCase) {
		uc.newID = fn
	}
}

// WithClock replaces the clock used for the initial state
func WithClock(fn func() time.Time) Option {
	return func(uc *releaseUseCase) {
		uc.now = fn
	}
}

// WithDefaultPlatforms sets the platforms used when a command has no --platform
func WithDefaultPlatforms(platforms []string) Option {
	return func(uc *releaseUseCase) {
		uc.parseOpts = append(uc.parseOpts, model.WithDefaultPlatforms(platforms))
	}
}

// NewRelease creates the release use case. repo is the repository every release belongs to.
func NewRelease(store interfaces.WorkflowStore, repo model.Repository, opts ...Option) interfaces.ReleaseUseCase {
	uc := &releaseUseCase{
		dispatcher: NewWorkflowDispatcher(store),
		repo:       repo,
		newID:      types.NewWorkflowID,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.routes = uc.actionRoutes()

	return uc
}

// HandleMessage starts a release workflow when the message is a "create release" command
func (uc *releaseUseCase) HandleMessage(ctx context.Context, conv interfaces.Conversation, msg *model.ChatMessage) error {
	logger := ctxlog.From(ctx)

	matched := createReleasePattern.FindStringSubmatch(msg.Text)
	if matched == nil {
		logger.Debug("Ignoring message without command",
			"channel_id", msg.ChannelID,
			"trigger", msg.Trigger,
		)
		return nil
	}

	if err := uc.createRelease(ctx, conv, msg, matched[1]); err != nil {
		return errutil.Report(ctx, conv, err)
	}
	return nil
}

func (uc *releaseUseCase) createRelease(ctx context.Context, conv interfaces.Conversation, msg *model.ChatMessage, args string) error {
	logger := ctxlog.From(ctx)

	cmd, err := model.ParseReleaseCommand(args, uc.parseOpts...)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			logger.Info("Invalid create release command",
				"reason", verr.Reason,
				"user_id", msg.UserID,
			)
			return conv.Respond(ctx, verr.Help())
		}
		return err
	}
	if len(cmd.IgnoredFlags) > 0 {
		logger.Debug("Ignoring unknown flags", "flags", cmd.IgnoredFlags)
	}

	id := uc.newID(msg.TeamID)
	factory := func() (*model.ReleaseState, error) {
		return model.NewReleaseState(id, uc.repo, cmd, uc.now()), nil
	}

	logger.Info("Starting release workflow",
		"id", id,
		"name", cmd.Name,
		"version", cmd.Version,
		"platforms", cmd.Platforms,
		"user_id", msg.UserID,
	)

	return uc.dispatcher.Start(ctx, id, factory, conv)
}
