package config

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/url-importer/pkg/settings"
)

// ShowAction prints the effective settings as YAML.
func ShowAction(c *cli.Context) error {
	path := c.String("settings")
	cfg, err := settings.Load(path)
	if err != nil {
		return err
	}

	if cfg.APIKey != "" && !c.Bool("reveal") {
		cfg.APIKey = "********"
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	fmt.Printf("# %s\n%s", path, out)
	return nil
}

// SetAction applies key=value pairs and saves the file.
func SetAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("Error: expected key=value arguments (keys: "+strings.Join(settings.Keys(), ", ")+")", 1)
	}

	path := c.String("settings")
	cfg, err := settings.Load(path)
	if err != nil {
		return err
	}

	for _, arg := range c.Args().Slice() {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return cli.Exit(fmt.Sprintf("Error: %q is not key=value", arg), 1)
		}
		if err := settings.Set(&cfg, strings.TrimSpace(key), value); err != nil {
			return cli.Exit("Error: "+err.Error(), 1)
		}
	}

	if err := settings.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Saved %d setting(s) to %s\n", c.NArg(), path)
	return nil
}
