package command

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/cppdiscord/threadbot"
	"github.com/cppdiscord/threadbot/coliru"
)

// maxInlineOutput is the output length from which a share link is posted instead of the output.
const maxInlineOutput = 1992

const missingCodeBlockReply = "Missing code block. Please use the following markdown\n\\`\\`\\`language\ncode here\n\\`\\`\\`"

// Run compiles the fenced code block following the command and replies with its output.
func (c *Commands) Run(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	block, err := coliru.ParseCodeBlock(c.argument(runCommand, input))
	if err != nil {
		var langErr *coliru.UnknownLanguageError
		switch {
		case errors.Is(err, coliru.ErrMissingCodeBlock):
			return discord.NewResponse(input, missingCodeBlockReply)

		case errors.As(err, &langErr) && langErr.Language == "":
			return discord.NewResponse(input, "Could not find a language to compile with.")

		case errors.As(err, &langErr):
			return discord.NewResponse(input, "Unknown language to compile for: "+langErr.Language)

		default:
			return nil, err
		}
	}

	output, err := c.compiler.Compile(ctx, block)
	if err != nil {
		logger.Errorf("Failed to compile %s code: %+v", block.Language, err)
		return discord.NewResponse(input, "Coliru did not respond in time.")
	}

	if utf8.RuneCountInString(output) < maxInlineOutput {
		return discord.NewResponse(input, "```\n"+output+"\n```")
	}

	link, err := c.compiler.Share(ctx, block)
	if err != nil {
		logger.Errorf("Failed to share %s code: %+v", block.Language, err)
		return discord.NewResponse(input, "Could not create coliru shared link")
	}

	return discord.NewResponse(input, "Output too big. Coliru link: "+link)
}
