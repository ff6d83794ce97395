package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/domain/types"
)

// File is an optional TOML file whose keys are flag names, e.g.
//
//	fork-url = "https://github.com/me/Archon.git"
//	work-branch = "myarchon"
//	compose-file = ["docker-compose.yml", "docker-compose.local.yml"]
//
// Values from the file apply only to flags not given on the command line or
// through the environment.
type File struct {
	Path string
}

// Flags returns CLI flags for the config file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "TOML config file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("FORKSYNC_CONFIG"),
		},
	}
}

// Load reads the file into flag values. Keys are returned sorted.
func (c *File) Load() (map[string]string, error) {
	if c.Path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file",
			goerr.V("path", c.Path), goerr.T(types.ErrTagInvalidConfig))
	}

	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file",
			goerr.V("path", c.Path), goerr.T(types.ErrTagInvalidConfig))
	}

	values := make(map[string]string, len(doc))
	for key, v := range doc {
		s, err := flagValue(v)
		if err != nil {
			return nil, goerr.Wrap(err, "unsupported value in config file",
				goerr.V("path", c.Path), goerr.V("key", key), goerr.T(types.ErrTagInvalidConfig))
		}
		values[key] = s
	}
	return values, nil
}

func flagValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool, int64, float64:
		return fmt.Sprint(v), nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return "", goerr.New("array items must be strings")
			}
			items = append(items, s)
		}
		return strings.Join(items, ","), nil
	}
	return "", goerr.New("value must be a string, number, bool or string array", goerr.V("type", fmt.Sprintf("%T", v)))
}

// Apply loads the file and sets every flag of cmd that is not set yet
func (c *File) Apply(ctx context.Context, cmd *cli.Command) error {
	values, err := c.Load()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	known := make(map[string]bool)
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			known[name] = true
		}
	}

	for _, key := range keys {
		if !known[key] || key == "config" {
			return goerr.New("unknown key in config file",
				goerr.V("path", c.Path), goerr.V("key", key), goerr.T(types.ErrTagInvalidConfig))
		}
		if cmd.IsSet(key) {
			ctxlog.From(ctx).Debug("Config file value overridden", "key", key)
			continue
		}
		if err := cmd.Set(key, values[key]); err != nil {
			return goerr.Wrap(err, "invalid value in config file",
				goerr.V("path", c.Path), goerr.V("key", key), goerr.T(types.ErrTagInvalidConfig))
		}
	}
	return nil
}
