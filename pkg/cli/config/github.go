package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub webhook configuration
type GitHub struct {
	WebhookSecret string `masq:"secret"`
	Repository    string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("FORKSYNC_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-repository",
			Usage:       "Accept events only from this repository (owner/name)",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("FORKSYNC_GITHUB_REPOSITORY"),
		},
	}
}
