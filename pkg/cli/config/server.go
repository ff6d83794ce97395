package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr        string
	SyncOnStart bool
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("FORKSYNC_ADDR"),
		},
		&cli.BoolFlag{
			Name:        "sync-on-start",
			Usage:       "Run one sync as soon as the server starts",
			Destination: &c.SyncOnStart,
			Sources:     cli.EnvVars("FORKSYNC_SYNC_ON_START"),
		},
	}
}
