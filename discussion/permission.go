package discussion

import "github.com/bwmarrin/discordgo"

// ReadWrite is the permission set granted to discussion participants.
const ReadWrite = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// MergeOverwrites folds overwrites that share a target into one.
// Allow and Deny bits are united per target, and an allowed bit is never denied.
// Targets keep the order of their first appearance.
func MergeOverwrites(overwrites ...*discordgo.PermissionOverwrite) []*discordgo.PermissionOverwrite {
	type key struct {
		typ discordgo.PermissionOverwriteType
		id  string
	}

	merged := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	index := map[key]*discordgo.PermissionOverwrite{}
	for _, o := range overwrites {
		k := key{typ: o.Type, id: o.ID}
		if existing, ok := index[k]; ok {
			existing.Allow |= o.Allow
			existing.Deny |= o.Deny
			continue
		}

		copied := *o
		index[k] = &copied
		merged = append(merged, &copied)
	}

	for _, o := range merged {
		o.Deny &^= o.Allow
	}

	return merged
}

// discussionOverwrites hides the channel from everyone but the bot and the given members.
// The guild ID doubles as the ID of the @everyone role.
func discussionOverwrites(guildID string, botID string, memberIDs ...string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: botID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ReadWrite},
	}
	for _, id := range memberIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    id,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ReadWrite,
		})
	}
	return MergeOverwrites(overwrites...)
}
