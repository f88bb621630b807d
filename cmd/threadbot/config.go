package main

import (
	"fmt"
	"os"

	"github.com/oklahomer/go-sarah/v4"
	"gopkg.in/yaml.v3"

	"github.com/cppdiscord/threadbot"
	"github.com/cppdiscord/threadbot/coliru"
	"github.com/cppdiscord/threadbot/command"
	"github.com/cppdiscord/threadbot/cppref"
	"github.com/cppdiscord/threadbot/discussion"
)

// tokenEnv names the environment variable holding the bot token.
const tokenEnv = "DISCORD_TOKEN"

// Config is the whole configuration file. Omitted sections keep their defaults.
type Config struct {
	Sarah      *sarah.Config      `yaml:"sarah"`
	Discord    *discord.Config    `yaml:"discord"`
	Discussion *discussion.Config `yaml:"discussion"`
	Coliru     *coliru.Config     `yaml:"coliru"`
	Cppref     *cppref.Config     `yaml:"cppref"`
	Command    *command.Config    `yaml:"command"`
}

// NewConfig creates a Config with every section set to its defaults.
func NewConfig() *Config {
	return &Config{
		Sarah:      sarah.NewConfig(),
		Discord:    discord.NewConfig(),
		Discussion: discussion.NewConfig(),
		Coliru:     coliru.NewConfig(),
		Cppref:     cppref.NewConfig(),
		Command:    command.NewConfig(),
	}
}

// LoadConfig reads the YAML file at path over the defaults.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := NewConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	return config, nil
}

// resolveToken picks the first non-empty token out of the flag, the environment and the file.
func (c *Config) resolveToken(flag string, env string) {
	switch {
	case flag != "":
		c.Discord.Token = flag
	case env != "":
		c.Discord.Token = env
	}
}
