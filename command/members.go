package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/cppdiscord/threadbot"
	"github.com/cppdiscord/threadbot/predicate"
)

const (
	studentMode = "student"
	teacherMode = "teacher"

	// memberPageSize is the largest page the members endpoint serves.
	memberPageSize = 1000
)

// guildMember adapts *discordgo.Member to predicate.Member.
type guildMember struct {
	*discordgo.Member
}

var _ predicate.Member = guildMember{}

func (m guildMember) HasRole(roleID string) bool {
	return slices.Contains(m.Roles, roleID)
}

// Members lists the guild members matching a role expression.
// In student mode the mentions are posted inside embeds so nobody is pinged.
// In teacher mode they are posted as plain mentions, which only webhooks,
// administrators and trusted users may do.
func (c *Commands) Members(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	event, err := discord.EventOf(input)
	if err != nil {
		return nil, err
	}

	if event.GuildID == "" {
		return discord.NewResponse(input, "This command can only be used in a server.")
	}

	mode, rest := splitFirstField(c.argument(membersCommand, input))
	if mode != studentMode && mode != teacherMode {
		return discord.NewResponse(input, fmt.Sprintf("Usage: %smembers <student|teacher> `expression`", c.config.Prefix))
	}

	p, err := predicate.Parse(strings.Trim(strings.TrimSpace(rest), "`"))
	if errors.Is(err, predicate.ErrInvalidExpression) {
		return discord.NewResponse(input, "Unrecognized input")
	} else if err != nil {
		return nil, err
	}

	if mode == teacherMode {
		allowed, err := c.mayPing(ctx, event)
		if err != nil {
			return nil, err
		}
		if !allowed {
			logger.Infof("Refusing to ping members for %s", event.Author.ID)
			return nil, nil
		}
	}

	roles, err := c.guild.GuildRoles(event.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles of %s: %w", event.GuildID, err)
	}

	members, err := c.listMembers(ctx, event.GuildID)
	if err != nil {
		return nil, err
	}

	selected := predicate.Select(p, members, roleDirectory(roles))
	mentions := make([]string, 0, len(selected))
	for _, m := range selected {
		mentions = append(mentions, mention(m.User.ID))
	}

	chunks := chunkMentions(mentions, c.config.ChunkSize)
	if len(chunks) == 0 {
		return nil, nil
	}

	messages := make([]*discordgo.MessageSend, 0, len(chunks))
	for _, chunk := range chunks {
		if mode == studentMode {
			messages = append(messages, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{{Description: chunk}}})
		} else {
			messages = append(messages, &discordgo.MessageSend{Content: chunk})
		}
	}

	return discord.NewResponse(input, messages)
}

func (c *Commands) mayPing(ctx context.Context, event *discordgo.MessageCreate) (bool, error) {
	if event.WebhookID != "" || c.isTrusted(event.Author.ID) {
		return true, nil
	}
	return c.isAdmin(ctx, event.Author.ID, event.ChannelID)
}

// listMembers pages through the guild's members in the order the gateway returns them.
func (c *Commands) listMembers(ctx context.Context, guildID string) ([]guildMember, error) {
	var members []guildMember
	after := ""
	for {
		page, err := c.guild.GuildMembers(guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch members of %s: %w", guildID, err)
		}

		for _, m := range page {
			if m.User == nil {
				continue
			}
			members = append(members, guildMember{Member: m})
			after = m.User.ID
		}

		if len(page) < memberPageSize {
			return members, nil
		}
	}
}

// splitFirstField splits text at its first whitespace rune.
func splitFirstField(text string) (string, string) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, ""
	}
	return text[:i], text[i:]
}

// roleDirectory maps role names to identifiers. The first role wins when names collide.
func roleDirectory(roles []*discordgo.Role) predicate.RoleDirectory {
	dir := predicate.RoleDirectory{}
	for _, r := range roles {
		if _, ok := dir[r.Name]; !ok {
			dir[r.Name] = r.ID
		}
	}
	return dir
}

// chunkMentions joins mentions with spaces and starts a new chunk once one grows beyond size.
func chunkMentions(mentions []string, size int) []string {
	var chunks []string
	var b strings.Builder
	for _, m := range mentions {
		b.WriteString(" ")
		b.WriteString(m)
		if b.Len() > size {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
