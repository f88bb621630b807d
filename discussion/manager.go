package discussion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
)

const (
	noticeBlacklisted = "You were blacklisted for being bad >:("
	noticeJoined      = "%s has been added to the chat"
	noticeLeft        = "%s has left the channel"
	noticeAdded       = "I have added %s to this chat."

	maxEmbedTitle = 256
)

// Session abstracts the discordgo.Session methods used by the Manager.
// *discordgo.Session satisfies this interface.
type Session interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

var _ Session = (*discordgo.Session)(nil)

// ManagerOption defines a function signature for Manager's functional options.
type ManagerOption func(manager *Manager)

// WithBlacklist replaces the Blacklist built from Config.Blacklist.
func WithBlacklist(blacklist *Blacklist) ManagerOption {
	return func(manager *Manager) {
		manager.blacklist = blacklist
	}
}

// WithClock sets the function used to timestamp header messages.
func WithClock(now func() time.Time) ManagerOption {
	return func(manager *Manager) {
		manager.now = now
	}
}

// Manager drives the lifecycle of discussion channels from reaction and message events.
//
// A discussion channel is named after the message it discusses.
// The Manager keeps no record of the channels it created; every event looks the
// channel up by name so that a deleted channel is never served from memory.
type Manager struct {
	config    *Config
	session   Session
	blacklist *Blacklist
	now       func() time.Time
}

// NewManager creates a new Manager with the given Config, Session and options.
func NewManager(config *Config, session Session, options ...ManagerOption) *Manager {
	manager := &Manager{
		config:  config,
		session: session,
		now:     time.Now,
	}

	for _, opt := range options {
		opt(manager)
	}

	if manager.blacklist == nil {
		manager.blacklist = NewBlacklist(config.Blacklist...)
	}

	return manager
}

// Blacklist returns the Blacklist consulted before opening or joining a channel.
func (m *Manager) Blacklist() *Blacklist {
	return m.blacklist
}

// ChannelName returns the name of the discussion channel for the given message.
func (m *Manager) ChannelName(messageID string) string {
	return m.config.ChannelPrefix + messageID
}

// IsDiscussionChannel tells whether the channel is named like a discussion channel.
func (m *Manager) IsDiscussionChannel(channel *discordgo.Channel) bool {
	return channel != nil && channel.Type == discordgo.ChannelTypeGuildText && strings.HasPrefix(channel.Name, m.config.ChannelPrefix)
}

// Authorize returns ErrBlacklisted when the user may not take part in discussions.
func (m *Manager) Authorize(userID string) error {
	if m.blacklist.Contains(userID) {
		return fmt.Errorf("user %s: %w", userID, ErrBlacklisted)
	}
	return nil
}

// HandleReactionAdd opens or joins a discussion channel on the trigger reaction,
// and deletes one on the close reaction.
func (m *Manager) HandleReactionAdd(ctx context.Context, bot *discordgo.User, r *discordgo.MessageReactionAdd) error {
	if r.MessageReaction == nil || r.GuildID == "" || isBot(bot, r.UserID, nil) {
		return nil
	}

	var err error
	switch r.Emoji.Name {
	case m.config.CloseEmoji:
		err = m.close(ctx, bot, r.MessageReaction)

	case m.config.TriggerEmoji:
		// Other bots may close a channel but never open or join one.
		if isBot(bot, r.UserID, r.Member) {
			return nil
		}
		err = m.open(ctx, bot, r.MessageReaction)
	}
	return absorb(err)
}

// HandleReactionRemove revokes the member's access when the trigger reaction is taken back.
// The channel stays even when nobody is left in it.
func (m *Manager) HandleReactionRemove(ctx context.Context, bot *discordgo.User, r *discordgo.MessageReactionRemove) error {
	if r.MessageReaction == nil || r.GuildID == "" || isBot(bot, r.UserID, nil) || r.Emoji.Name != m.config.TriggerEmoji {
		return nil
	}

	return absorb(m.leave(ctx, r.MessageReaction))
}

// HandleMessage adds every mentioned member to the discussion channel the message was posted in.
// Only administrators and webhooks may add members this way.
func (m *Manager) HandleMessage(ctx context.Context, bot *discordgo.User, msg *discordgo.MessageCreate) error {
	if msg.Message == nil || msg.Author == nil || msg.GuildID == "" || len(msg.Mentions) == 0 {
		return nil
	}

	if bot != nil && msg.Author.ID == bot.ID {
		return nil
	}

	channel, err := m.session.Channel(msg.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return absorb(classify("fetch channel", err))
	}

	if !m.IsDiscussionChannel(channel) {
		return nil
	}

	if msg.WebhookID == "" {
		permissions, err := m.session.UserChannelPermissions(msg.Author.ID, msg.ChannelID, discordgo.WithContext(ctx))
		if err != nil {
			return absorb(classify("fetch author permissions", err))
		}

		if permissions&discordgo.PermissionAdministrator == 0 {
			return nil
		}
	}

	userIDs := make([]string, 0, len(msg.Mentions))
	for _, u := range msg.Mentions {
		if bot != nil && u.ID == bot.ID {
			continue
		}
		userIDs = append(userIDs, u.ID)
	}

	return absorb(m.grantAll(ctx, channel.ID, userIDs))
}

// AddMembers grants the given users access to a discussion channel and announces each of them.
// ErrNotDiscussionChannel is returned when the channel is not a discussion channel.
func (m *Manager) AddMembers(ctx context.Context, channelID string, userIDs ...string) error {
	channel, err := m.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("fetch channel", err)
	}

	if !m.IsDiscussionChannel(channel) {
		return ErrNotDiscussionChannel
	}

	return m.grantAll(ctx, channel.ID, userIDs)
}

func (m *Manager) grantAll(ctx context.Context, channelID string, userIDs []string) error {
	for _, id := range userIDs {
		if err := m.grant(ctx, channelID, id); err != nil {
			return err
		}

		_, err := m.session.ChannelMessageSend(channelID, fmt.Sprintf(noticeAdded, mention(id)), discordgo.WithContext(ctx))
		if err != nil {
			return classify("announce added member", err)
		}
		logger.Infof("Added %s to %s", id, channelID)
	}
	return nil
}

func (m *Manager) close(ctx context.Context, bot *discordgo.User, r *discordgo.MessageReaction) error {
	channel, err := m.session.Channel(r.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("fetch channel", err)
	}

	if !m.IsDiscussionChannel(channel) {
		return nil
	}

	header, err := m.session.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("fetch header message", err)
	}

	if !m.isHeader(bot, header) {
		return nil
	}

	if _, err := m.session.ChannelDelete(channel.ID, discordgo.WithContext(ctx)); err != nil {
		return classify("delete channel", err)
	}

	logger.Infof("Closed %s on request of %s", channel.Name, r.UserID)
	return nil
}

func (m *Manager) isHeader(bot *discordgo.User, msg *discordgo.Message) bool {
	if bot == nil || msg.Author == nil || msg.Author.ID != bot.ID || len(msg.Embeds) == 0 {
		return false
	}
	return msg.Embeds[0].Description == m.config.CloseSentinel
}

func (m *Manager) open(ctx context.Context, bot *discordgo.User, r *discordgo.MessageReaction) error {
	if err := m.Authorize(r.UserID); err != nil {
		logger.Infof("Rejected discussion request: %+v", err)
		_, err := m.session.ChannelMessageSend(r.ChannelID, noticeBlacklisted, discordgo.WithContext(ctx))
		if err != nil {
			return classify("send rejection notice", err)
		}
		return nil
	}

	channels, err := m.session.GuildChannels(r.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("list guild channels", err)
	}

	name := m.ChannelName(r.MessageID)
	if existing := findChannel(channels, name, discordgo.ChannelTypeGuildText); existing != nil {
		return m.join(ctx, existing, r.UserID)
	}

	return m.create(ctx, bot, r, channels)
}

func (m *Manager) join(ctx context.Context, channel *discordgo.Channel, userID string) error {
	if err := m.grant(ctx, channel.ID, userID); err != nil {
		return err
	}

	logger.Infof("Added %s to %s", userID, channel.Name)
	return m.sendTransient(ctx, channel.ID, fmt.Sprintf(noticeJoined, mention(userID)))
}

func (m *Manager) create(ctx context.Context, bot *discordgo.User, r *discordgo.MessageReaction, channels []*discordgo.Channel) error {
	if bot == nil {
		logger.Warnf("Session is not ready. Skipping discussion request on %s", r.MessageID)
		return nil
	}

	origin, err := m.session.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("fetch origin message", err)
	}

	if origin.Author == nil {
		logger.Debugf("Skipping message without author: %s", origin.ID)
		return nil
	}

	category, err := m.ensureCategory(ctx, r.GuildID, channels)
	if err != nil {
		return err
	}

	name := m.ChannelName(r.MessageID)
	created, err := m.session.GuildChannelCreateComplex(r.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             category.ID,
		PermissionOverwrites: discussionOverwrites(r.GuildID, bot.ID, r.UserID, origin.Author.ID),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return classify("create channel", err)
	}
	logger.Infof("Opened %s for %s", name, r.UserID)

	header, err := m.session.ChannelMessageSendEmbed(created.ID, m.headerEmbed(r.GuildID, r.ChannelID, origin), discordgo.WithContext(ctx))
	if err != nil {
		return classify("send header", err)
	}

	if err := m.session.MessageReactionAdd(created.ID, header.ID, m.config.CloseEmoji, discordgo.WithContext(ctx)); err != nil {
		return classify("add close reaction", err)
	}

	return m.sendTransient(ctx, created.ID, origin.Author.Mention()+" "+mention(r.UserID))
}

func (m *Manager) ensureCategory(ctx context.Context, guildID string, channels []*discordgo.Channel) (*discordgo.Channel, error) {
	if category := findChannel(channels, m.config.CategoryName, discordgo.ChannelTypeGuildCategory); category != nil {
		return category, nil
	}

	category, err := m.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: m.config.CategoryName,
		Type: discordgo.ChannelTypeGuildCategory,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("create category", err)
	}

	logger.Infof("Created category %s in guild %s", m.config.CategoryName, guildID)
	return category, nil
}

func (m *Manager) headerEmbed(guildID string, channelID string, origin *discordgo.Message) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       truncate(origin.Content, maxEmbedTitle),
		URL:         fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, origin.ID),
		Description: m.config.CloseSentinel,
		Timestamp:   m.now().UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "original message by " + origin.Author.String(),
		},
	}
}

func (m *Manager) leave(ctx context.Context, r *discordgo.MessageReaction) error {
	channels, err := m.session.GuildChannels(r.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("list guild channels", err)
	}

	channel := findChannel(channels, m.ChannelName(r.MessageID), discordgo.ChannelTypeGuildText)
	if channel == nil {
		return nil
	}

	_, err = m.session.ChannelMessageSend(channel.ID, fmt.Sprintf(noticeLeft, mention(r.UserID)), discordgo.WithContext(ctx))
	if err != nil {
		return classify("send departure notice", err)
	}

	err = m.session.ChannelPermissionSet(channel.ID, r.UserID, discordgo.PermissionOverwriteTypeMember, 0, ReadWrite, discordgo.WithContext(ctx))
	if err != nil {
		return classify("revoke permission", err)
	}

	logger.Infof("Removed %s from %s", r.UserID, channel.Name)
	return nil
}

func (m *Manager) grant(ctx context.Context, channelID string, userID string) error {
	err := m.session.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, ReadWrite, 0, discordgo.WithContext(ctx))
	if err != nil {
		return classify("grant permission", err)
	}
	return nil
}

// sendTransient posts a notice and deletes it after Config.NoticeTTL.
func (m *Manager) sendTransient(ctx context.Context, channelID string, content string) error {
	msg, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return classify("send notice", err)
	}

	if m.config.NoticeTTL <= 0 || msg == nil {
		return nil
	}

	time.AfterFunc(m.config.NoticeTTL, func() {
		if err := m.session.ChannelMessageDelete(channelID, msg.ID); err != nil {
			logger.Warnf("Failed to delete notice %s in %s: %+v", msg.ID, channelID, err)
		}
	})
	return nil
}

func findChannel(channels []*discordgo.Channel, name string, typ discordgo.ChannelType) *discordgo.Channel {
	for _, c := range channels {
		if c.Type == typ && c.Name == name {
			return c
		}
	}
	return nil
}

func isBot(bot *discordgo.User, userID string, member *discordgo.Member) bool {
	if bot != nil && bot.ID == userID {
		return true
	}
	return member != nil && member.User != nil && member.User.Bot
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
