package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/cppdiscord/threadbot"
	"github.com/cppdiscord/threadbot/discussion"
)

// Discussions manages discussion channel membership. *discussion.Manager satisfies this interface.
type Discussions interface {
	Authorize(userID string) error
	AddMembers(ctx context.Context, channelID string, userIDs ...string) error
	Blacklist() *discussion.Blacklist
}

var _ Discussions = (*discussion.Manager)(nil)

// AddUser adds the mentioned members to the discussion channel the command was posted in.
func (c *Commands) AddUser(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	event, err := discord.EventOf(input)
	if err != nil {
		return nil, err
	}

	if len(event.Mentions) == 0 {
		return discord.NewResponse(input, fmt.Sprintf("Usage: %sadd_user @member", c.config.Prefix))
	}

	if err := c.discussions.Authorize(event.Author.ID); errors.Is(err, discussion.ErrBlacklisted) {
		return discord.NewResponse(input, "You were blacklisted for being bad >:(")
	} else if err != nil {
		return nil, err
	}

	err = c.discussions.AddMembers(ctx, event.ChannelID, userIDs(event.Mentions)...)
	switch {
	case err == nil:
		// The manager announces every added member.
		return nil, nil

	case errors.Is(err, discussion.ErrNotDiscussionChannel):
		return discord.NewResponse(input, "This command can only be used in discussion channels.")

	case errors.Is(err, discussion.ErrLookupMiss):
		logger.Debugf("Channel %s vanished before members could be added: %+v", event.ChannelID, err)
		return nil, nil

	default:
		return nil, err
	}
}

// Blacklist lists, adds or removes the members who may not take part in discussions.
func (c *Commands) Blacklist(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	event, err := discord.EventOf(input)
	if err != nil {
		return nil, err
	}

	admin, err := c.isAdmin(ctx, event.Author.ID, event.ChannelID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return discord.NewResponse(input, "Only administrators can manage the blacklist.")
	}

	blacklist := c.discussions.Blacklist()
	sub, _, _ := strings.Cut(c.argument(blacklistCommand, input), " ")
	switch sub {
	case "list":
		ids := blacklist.IDs()
		if len(ids) == 0 {
			return discord.NewResponse(input, "The blacklist is empty.")
		}
		mentions := make([]string, 0, len(ids))
		for _, id := range ids {
			mentions = append(mentions, mention(id))
		}
		return discord.NewResponse(input, "Blacklisted members: "+strings.Join(mentions, " "))

	case "add", "remove":
		if len(event.Mentions) == 0 {
			break
		}

		lines := make([]string, 0, len(event.Mentions))
		for _, id := range userIDs(event.Mentions) {
			if sub == "add" {
				if blacklist.Add(id) {
					logger.Infof("%s blacklisted %s", event.Author.ID, id)
					lines = append(lines, fmt.Sprintf("Added %s to the blacklist.", mention(id)))
				} else {
					lines = append(lines, fmt.Sprintf("%s is already blacklisted.", mention(id)))
				}
			} else {
				if blacklist.Remove(id) {
					logger.Infof("%s removed %s from the blacklist", event.Author.ID, id)
					lines = append(lines, fmt.Sprintf("Removed %s from the blacklist.", mention(id)))
				} else {
					lines = append(lines, fmt.Sprintf("%s is not blacklisted.", mention(id)))
				}
			}
		}
		return discord.NewResponse(input, strings.Join(lines, "\n"))
	}

	return discord.NewResponse(input, fmt.Sprintf("Usage: %sblacklist <add|remove|list> @member", c.config.Prefix))
}

func userIDs(users []*discordgo.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
