package discussion

import "time"

// Config contains configuration variables for the Manager.
type Config struct {
	// TriggerEmoji is the reaction that opens a discussion channel for a message.
	TriggerEmoji string `json:"trigger_emoji" yaml:"trigger_emoji"`

	// CloseEmoji is the reaction on the header message that deletes the channel.
	CloseEmoji string `json:"close_emoji" yaml:"close_emoji"`

	// CategoryName is the category under which discussion channels are created.
	// The category is created on demand.
	CategoryName string `json:"category_name" yaml:"category_name"`

	// ChannelPrefix is prepended to the origin message's ID to name a discussion channel.
	ChannelPrefix string `json:"channel_prefix" yaml:"channel_prefix"`

	// CloseSentinel is the header embed's description.
	// A close reaction only deletes the channel while the header still carries this text.
	CloseSentinel string `json:"close_sentinel" yaml:"close_sentinel"`

	// NoticeTTL is how long join notices stay visible before being deleted.
	// Zero or a negative value keeps them.
	NoticeTTL time.Duration `json:"notice_ttl" yaml:"notice_ttl"`

	// Blacklist lists user IDs that may not open or join discussion channels.
	Blacklist []string `json:"blacklist" yaml:"blacklist"`
}

// NewConfig creates and returns a new Config instance with default settings.
func NewConfig() *Config {
	return &Config{
		TriggerEmoji:  "➡️",
		CloseEmoji:    "❌",
		CategoryName:  "threads",
		ChannelPrefix: "discussion-",
		CloseSentinel: "React with :x: to close the channel",
		NoticeTTL:     time.Second,
		Blacklist:     []string{},
	}
}
