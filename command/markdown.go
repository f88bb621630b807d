package command

import "strings"

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"|", `\|`,
	"`", "\\`",
	">", `\>`,
)

// escapeMarkdown makes text render literally in a Discord message.
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
