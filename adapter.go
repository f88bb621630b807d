package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
)

const (
	// DISCORD is a designated sarah.BotType for Discord integration.
	DISCORD sarah.BotType = "discord"
)

// session is an internal interface that abstracts the discordgo.Session methods
// used by the Adapter. This allows mocking the session in tests.
// *discordgo.Session satisfies this interface.
type session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// EventHandler receives the events go-sarah does not model.
// The bot's own user is passed along so that handlers can ignore their own actions; it is nil until the session is ready.
//
// *discussion.Manager satisfies this interface.
type EventHandler interface {
	HandleReactionAdd(ctx context.Context, bot *discordgo.User, r *discordgo.MessageReactionAdd) error
	HandleReactionRemove(ctx context.Context, bot *discordgo.User, r *discordgo.MessageReactionRemove) error
	HandleMessage(ctx context.Context, bot *discordgo.User, m *discordgo.MessageCreate) error
}

// ChannelID represents a Discord channel as sarah.OutputDestination.
type ChannelID string

var _ sarah.OutputDestination = ChannelID("")

// AdapterOption defines a function signature for Adapter's functional options.
type AdapterOption func(adapter *Adapter)

// WithSession creates an AdapterOption with the given *discordgo.Session.
// Use this to inject a pre-configured session, e.g. one created by NewSession and shared with an EventHandler.
// If this option is not given, NewAdapter creates a new session from Config.
func WithSession(session *discordgo.Session) AdapterOption {
	return func(adapter *Adapter) {
		adapter.session = session
	}
}

// WithEventHandler creates an AdapterOption that routes reaction events and guild messages to the given handler.
func WithEventHandler(handler EventHandler) AdapterOption {
	return func(adapter *Adapter) {
		adapter.eventHandler = handler
	}
}

// Adapter is a sarah.Adapter implementation for Discord.
type Adapter struct {
	config       *Config
	session      session
	eventHandler EventHandler
}

var _ sarah.Adapter = (*Adapter)(nil)

// NewSession creates a *discordgo.Session configured by the given Config.
func NewSession(config *Config) (*discordgo.Session, error) {
	if config.Token == "" {
		return nil, ErrEmptyToken
	}

	s, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	s.Identify.Intents = config.Intents
	s.SyncEvents = config.SyncEvents
	return s, nil
}

// NewAdapter creates a new Adapter with the given Config and options.
func NewAdapter(config *Config, options ...AdapterOption) (*Adapter, error) {
	adapter := &Adapter{
		config: config,
	}

	for _, opt := range options {
		opt(adapter)
	}

	if adapter.session == nil {
		s, err := NewSession(config)
		if err != nil {
			return nil, err
		}
		adapter.session = s
	}

	return adapter, nil
}

// BotType returns a designated BotType for Discord integration.
func (a *Adapter) BotType() sarah.BotType {
	return DISCORD
}

// Run establishes a connection with Discord and blocks until the context is canceled.
func (a *Adapter) Run(ctx context.Context, enqueueInput func(sarah.Input) error, notifyErr func(error)) {
	a.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		a.handleMessage(ctx, s, m, enqueueInput)
	})

	if a.eventHandler != nil {
		a.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
			a.handleReactionAdd(ctx, s, r)
		})
		a.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
			a.handleReactionRemove(ctx, s, r)
		})
	}

	err := a.session.Open()
	if err != nil {
		notifyErr(sarah.NewBotNonContinuableError(fmt.Sprintf("failed to open Discord session: %s", err.Error())))
		return
	}

	// Block until the context is canceled.
	<-ctx.Done()

	if closeErr := a.session.Close(); closeErr != nil {
		logger.Errorf("Failed to close Discord session: %+v", closeErr)
	}
}

// botUser returns the connected bot's user, or nil before the session is ready.
func botUser(s *discordgo.Session) *discordgo.User {
	if s == nil || s.State == nil {
		return nil
	}
	return s.State.User
}

// handleMessage processes an incoming Discord message and routes it to enqueueInput.
func (a *Adapter) handleMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, enqueueInput func(sarah.Input) error) {
	input, err := MessageToInput(m)
	if err != nil {
		// MessageToInput returns ErrNoAuthor for system messages with no author.
		logger.Debugf("Skipping message: %+v", err)
		return
	}

	// Ignore messages from the bot itself.
	bot := botUser(s)
	if bot != nil && m.Author.ID == bot.ID {
		return
	}

	// Ignore other bots, but let webhooks through.
	if m.Author.Bot && m.WebhookID == "" {
		return
	}

	if a.eventHandler != nil && m.GuildID != "" {
		if err := a.eventHandler.HandleMessage(ctx, bot, m); err != nil {
			logger.Errorf("Failed to handle message %s: %+v", m.ID, err)
		}
	}

	var enqueueErr error
	trimmed := strings.TrimSpace(input.Message())
	if a.config.HelpCommand != "" && trimmed == a.config.HelpCommand {
		enqueueErr = enqueueInput(sarah.NewHelpInput(input))
	} else if a.config.AbortCommand != "" && trimmed == a.config.AbortCommand {
		enqueueErr = enqueueInput(sarah.NewAbortInput(input))
	} else {
		enqueueErr = enqueueInput(input)
	}
	if enqueueErr != nil {
		logger.Errorf("Failed to enqueue input: %+v", enqueueErr)
	}
}

func (a *Adapter) handleReactionAdd(ctx context.Context, s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}

	if err := a.eventHandler.HandleReactionAdd(ctx, botUser(s), r); err != nil {
		logger.Errorf("Failed to handle reaction %s on %s: %+v", r.Emoji.Name, r.MessageID, err)
	}
}

func (a *Adapter) handleReactionRemove(ctx context.Context, s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil {
		return
	}

	if err := a.eventHandler.HandleReactionRemove(ctx, botUser(s), r); err != nil {
		logger.Errorf("Failed to handle reaction removal %s on %s: %+v", r.Emoji.Name, r.MessageID, err)
	}
}

// SendMessage sends the given message to Discord.
func (a *Adapter) SendMessage(_ context.Context, output sarah.Output) {
	destination, ok := output.Destination().(ChannelID)
	if !ok {
		logger.Errorf("Destination is not instance of ChannelID. %#v.", output.Destination())
		return
	}

	channelID := string(destination)

	switch content := output.Content().(type) {
	case string:
		_, err := a.session.ChannelMessageSend(channelID, content)
		if err != nil {
			logger.Errorf("Failed to send message to %s: %+v", channelID, err)
		}

	case *discordgo.MessageSend:
		_, err := a.session.ChannelMessageSendComplex(channelID, content)
		if err != nil {
			logger.Errorf("Failed to send complex message to %s: %+v", channelID, err)
		}

	case []*discordgo.MessageSend:
		// Sent in order. Stops at the first failure.
		for i, msg := range content {
			_, err := a.session.ChannelMessageSendComplex(channelID, msg)
			if err != nil {
				logger.Errorf("Failed to send message %d of %d to %s: %+v", i+1, len(content), channelID, err)
				break
			}
		}

	case *sarah.CommandHelps:
		lines := make([]string, 0, len(*content))
		for _, h := range *content {
			lines = append(lines, fmt.Sprintf("**%s**: %s", h.Identifier, h.Instruction))
		}
		text := strings.Join(lines, "\n")
		_, err := a.session.ChannelMessageSend(channelID, text)
		if err != nil {
			logger.Errorf("Failed to send help message to %s: %+v", channelID, err)
		}

	default:
		logger.Warnf("Unexpected output %#v", output)
	}
}

// Input is a sarah.Input implementation that represents a received Discord message.
type Input struct {
	Event     *discordgo.MessageCreate
	senderKey string
	text      string
	sentAt    time.Time
	channelID ChannelID
}

var _ sarah.Input = (*Input)(nil)

// SenderKey returns a unique key representing the sender in the channel.
func (i *Input) SenderKey() string {
	return i.senderKey
}

// Message returns the received text.
func (i *Input) Message() string {
	return i.text
}

// SentAt returns when the message was sent.
func (i *Input) SentAt() time.Time {
	return i.sentAt
}

// ReplyTo returns the Discord channel where the message was received.
func (i *Input) ReplyTo() sarah.OutputDestination {
	return i.channelID
}

// MessageToInput converts a *discordgo.MessageCreate event to *Input.
func MessageToInput(m *discordgo.MessageCreate) (*Input, error) {
	if m.Author == nil {
		return nil, ErrNoAuthor
	}

	return &Input{
		Event:     m,
		senderKey: fmt.Sprintf("%s_%s", m.ChannelID, m.Author.ID),
		text:      m.Content,
		sentAt:    m.Timestamp,
		channelID: ChannelID(m.ChannelID),
	}, nil
}

// EventOf returns the message event behind the given input.
// ErrNotDiscordInput is returned for inputs from other adapters.
func EventOf(input sarah.Input) (*discordgo.MessageCreate, error) {
	i, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotDiscordInput, input)
	}
	return i.Event, nil
}

// NewResponse creates a *sarah.CommandResponse with the given message.
// The message may be a string, a *discordgo.MessageSend or a []*discordgo.MessageSend.
func NewResponse(input sarah.Input, message interface{}) (*sarah.CommandResponse, error) {
	if _, ok := input.(*Input); !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotDiscordInput, input)
	}

	return &sarah.CommandResponse{
		Content: message,
	}, nil
}
