// Package command provides the bot's chat commands as go-sarah command props.
//
// Commands reply through the Discord adapter, so they only work with inputs
// received by it.
package command

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/cppdiscord/threadbot"
	"github.com/cppdiscord/threadbot/coliru"
	"github.com/cppdiscord/threadbot/cppref"
)

const (
	runCommand       = "run"
	cppCommand       = "cpp"
	membersCommand   = "members"
	addUserCommand   = "add_user"
	blacklistCommand = "blacklist"
)

// Compiler runs code blocks. *coliru.Client satisfies this interface.
type Compiler interface {
	Compile(ctx context.Context, block *coliru.CodeBlock) (string, error)
	Share(ctx context.Context, block *coliru.CodeBlock) (string, error)
}

// Searcher queries the reference wiki. *cppref.Client satisfies this interface.
type Searcher interface {
	Search(ctx context.Context, query string) (*cppref.Result, error)
}

// Guild reads roles, members and permissions. *discordgo.Session satisfies this interface.
type Guild interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	UserChannelPermissions(userID string, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

var (
	_ Compiler = (*coliru.Client)(nil)
	_ Searcher = (*cppref.Client)(nil)
	_ Guild    = (*discordgo.Session)(nil)
)

// Commands holds the collaborators the chat commands call.
type Commands struct {
	config      *Config
	compiler    Compiler
	searcher    Searcher
	guild       Guild
	discussions Discussions
	patterns    map[string]*regexp.Regexp
}

// NewCommands creates a new Commands with the given Config and collaborators.
func NewCommands(config *Config, compiler Compiler, searcher Searcher, guild Guild, discussions Discussions) *Commands {
	patterns := map[string]*regexp.Regexp{}
	for _, name := range []string{runCommand, cppCommand, membersCommand, addUserCommand, blacklistCommand} {
		patterns[name] = regexp.MustCompile(`^` + regexp.QuoteMeta(config.Prefix+name) + `\b`)
	}

	return &Commands{
		config:      config,
		compiler:    compiler,
		searcher:    searcher,
		guild:       guild,
		discussions: discussions,
		patterns:    patterns,
	}
}

// Props returns the command props of every command.
func (c *Commands) Props() []*sarah.CommandProps {
	return []*sarah.CommandProps{
		c.props(runCommand, c.Run, "Input %srun followed by a ```language fenced code block to compile and run it. Supported: cpp, c, python, haskell."),
		c.props(cppCommand, c.Cpp, "Input %scpp <query> to search cppreference."),
		c.props(membersCommand, c.Members, "Input %smembers <student|teacher> `( @role1 and @role2 ) or not @role3` to list matching members. teacher pings them."),
		c.props(addUserCommand, c.AddUser, "Input %sadd_user @member in a discussion channel to add the member to it."),
		c.props(blacklistCommand, c.Blacklist, "Input %sblacklist <add|remove|list> @member to manage who may open discussions. Administrators only."),
	}
}

func (c *Commands) props(name string, fn func(context.Context, sarah.Input) (*sarah.CommandResponse, error), instruction string) *sarah.CommandProps {
	return sarah.NewCommandPropsBuilder().
		BotType(discord.DISCORD).
		Identifier(name).
		MatchPattern(c.patterns[name]).
		Func(fn).
		Instruction(fmt.Sprintf(instruction, c.config.Prefix)).
		MustBuild()
}

// argument returns the input's text following the command name.
func (c *Commands) argument(name string, input sarah.Input) string {
	return sarah.StripMessage(c.patterns[name], input.Message())
}

func (c *Commands) isTrusted(userID string) bool {
	return slices.Contains(c.config.TrustedUserIDs, userID)
}

func (c *Commands) isAdmin(ctx context.Context, userID string, channelID string) (bool, error) {
	permissions, err := c.guild.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to fetch permissions of %s: %w", userID, err)
	}
	return permissions&discordgo.PermissionAdministrator != 0, nil
}

func mention(userID string) string {
	return "<@" + userID + ">"
}
