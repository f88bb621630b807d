// Command threadbot runs the Discord bot that opens a private discussion
// channel for a message when a member reacts to it, and serves the
// run, cpp, members, add_user and blacklist chat commands.
//
// Usage:
//
//	export DISCORD_TOKEN="your-bot-token"
//	threadbot --config threadbot.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
	"github.com/spf13/cobra"

	"github.com/cppdiscord/threadbot"
	"github.com/cppdiscord/threadbot/coliru"
	"github.com/cppdiscord/threadbot/command"
	"github.com/cppdiscord/threadbot/cppref"
	"github.com/cppdiscord/threadbot/discussion"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var token string

	cmd := &cobra.Command{
		Use:          "threadbot",
		Short:        "Run the discussion channel bot",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			config.resolveToken(token, os.Getenv(tokenEnv))

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return run(ctx, config)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration file")
	cmd.Flags().StringVar(&token, "token", "", "Discord bot token. Overrides "+tokenEnv+" and the configuration file")

	return cmd
}

// run wires the bot together and blocks until ctx is canceled.
func run(ctx context.Context, config *Config) error {
	session, err := discord.NewSession(config.Discord)
	if err != nil {
		return err
	}

	manager := discussion.NewManager(config.Discussion, session)

	adapter, err := discord.NewAdapter(config.Discord, discord.WithSession(session), discord.WithEventHandler(manager))
	if err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}

	storage := sarah.NewUserContextStorage(sarah.NewCacheConfig())
	sarah.RegisterBot(sarah.NewBot(adapter, sarah.BotWithStorage(storage)))

	commands := command.NewCommands(
		config.Command,
		coliru.NewClient(config.Coliru),
		cppref.NewClient(config.Cppref),
		session,
		manager,
	)
	for _, props := range commands.Props() {
		sarah.RegisterCommandProps(props)
	}

	if err := sarah.Run(ctx, config.Sarah); err != nil {
		return fmt.Errorf("failed to run: %w", err)
	}

	logger.Infof("Bot is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Infof("Shutting down...")

	return nil
}
