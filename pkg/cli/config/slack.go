package config

import (
	"github.com/urfave/cli/v3"

	slackinfra "github.com/m-mizutani/tagrelease/pkg/infra/slack"
)

// Slack holds Slack app configuration
type Slack struct {
	BotToken      string `masq:"secret"`
	SigningSecret string `masq:"secret"`
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token (xoxb-...)",
			Required:    true,
			Destination: &c.BotToken,
			Sources:     cli.EnvVars("TAGRELEASE_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret to verify requests",
			Required:    true,
			Destination: &c.SigningSecret,
			Sources:     cli.EnvVars("TAGRELEASE_SLACK_SIGNING_SECRET"),
		},
	}
}

// NewClient creates a Slack client
func (c *Slack) NewClient() *slackinfra.Client {
	return slackinfra.NewClient(c.BotToken)
}
