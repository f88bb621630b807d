package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/cppdiscord/threadbot"
	"github.com/cppdiscord/threadbot/cppref"
)

const (
	maxLibraryBesideLanguage = 10
	maxLibraryOnly           = 15
)

// Cpp searches cppreference for the text following the command.
func (c *Commands) Cpp(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	query := c.argument(cppCommand, input)
	if query == "" {
		return discord.NewResponse(input, fmt.Sprintf("Usage: %scpp <query>", c.config.Prefix))
	}

	result, err := c.searcher.Search(ctx, query)
	if err != nil {
		var statusErr *cppref.StatusError
		if errors.As(err, &statusErr) {
			return discord.NewResponse(input, fmt.Sprintf("An error occurred (status code: %d). Retry later.", statusErr.StatusCode))
		}
		return nil, err
	}

	if result.Redirected {
		return discord.NewResponse(input, "<"+result.URL+">")
	}

	embed := renderSearch(query, result)
	if embed == nil {
		return discord.NewResponse(input, "No results found.")
	}

	return discord.NewResponse(input, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}})
}

// renderSearch returns nil when the result holds no link.
func renderSearch(query string, result *cppref.Result) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{}

	library := make([]string, 0, len(result.Library))
	for _, l := range result.Library {
		library = append(library, fmt.Sprintf("[`%s`](%s)", l.Title, l.URL))
	}

	if len(result.Language) > 0 {
		language := make([]string, 0, len(result.Language))
		for _, l := range result.Language {
			language = append(language, fmt.Sprintf("[%s](%s)", l.Title, l.URL))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Language Results",
			Value: strings.Join(language, "\n"),
		})

		if len(library) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Library Results",
				Value: strings.Join(library[:min(len(library), maxLibraryBesideLanguage)], "\n"),
			})
		}
	} else {
		if len(library) == 0 {
			return nil
		}

		embed.Title = "Search Results"
		embed.Description = strings.Join(library[:min(len(library), maxLibraryOnly)], "\n")
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "See More",
		Value:  fmt.Sprintf("[`%s` results](%s)", escapeMarkdown(query), result.URL),
		Inline: true,
	})
	return embed
}
