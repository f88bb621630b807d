package discussion

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

const (
	testGuildID   = "guild-1"
	testChannelID = "general"
	testBotID     = "bot-1"
)

var testBot = &discordgo.User{ID: testBotID, Username: "threadbot", Bot: true}

func notFound() error {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"},
		ResponseBody: []byte(`{"message": "Unknown Channel", "code": 10003}`),
	}
}

type sentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

type permissionCall struct {
	ChannelID string
	TargetID  string
	Allow     int64
	Deny      int64
}

type reactionCall struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// fakeGuild is an in-memory Session holding a single guild's channels and messages.
type fakeGuild struct {
	mutex sync.Mutex

	channels        []*discordgo.Channel
	messages        map[string]*discordgo.Message
	userPermissions map[string]int64
	nextID          int

	created         []discordgo.GuildChannelCreateData
	deleted         []string
	sent            []sentMessage
	permissionCalls []permissionCall
	reactions       []reactionCall
	deletedMessages chan string

	// errors maps a method name to the error it should return.
	errors map[string]error
}

var _ Session = (*fakeGuild)(nil)

func newFakeGuild() *fakeGuild {
	g := &fakeGuild{
		channels: []*discordgo.Channel{
			{ID: testChannelID, GuildID: testGuildID, Name: "general", Type: discordgo.ChannelTypeGuildText},
		},
		messages:        map[string]*discordgo.Message{},
		userPermissions: map[string]int64{},
		deletedMessages: make(chan string, 10),
		errors:          map[string]error{},
	}
	return g
}

func (g *fakeGuild) id() string {
	g.nextID++
	return "id-" + strconv.Itoa(g.nextID)
}

func (g *fakeGuild) addMessage(msg *discordgo.Message) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.messages[msg.ChannelID+"/"+msg.ID] = msg
}

func (g *fakeGuild) channelByName(name string) *discordgo.Channel {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for _, c := range g.channels {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (g *fakeGuild) count(name string) int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	n := 0
	for _, c := range g.channels {
		if c.Name == name {
			n++
		}
	}
	return n
}

func (g *fakeGuild) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.errors["Channel"]; err != nil {
		return nil, err
	}
	for _, c := range g.channels {
		if c.ID == channelID {
			return c, nil
		}
	}
	return nil, notFound()
}

func (g *fakeGuild) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.errors["GuildChannels"]; err != nil {
		return nil, err
	}
	if guildID != testGuildID {
		return nil, notFound()
	}
	return append([]*discordgo.Channel(nil), g.channels...), nil
}

func (g *fakeGuild) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.errors["GuildChannelCreateComplex"]; err != nil {
		return nil, err
	}
	g.created = append(g.created, data)
	c := &discordgo.Channel{
		ID:                   g.id(),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	g.channels = append(g.channels, c)
	return c, nil
}

func (g *fakeGuild) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for i, c := range g.channels {
		if c.ID == channelID {
			g.channels = append(g.channels[:i], g.channels[i+1:]...)
			g.deleted = append(g.deleted, channelID)
			return c, nil
		}
	}
	return nil, notFound()
}

func (g *fakeGuild) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.errors["ChannelPermissionSet"]; err != nil {
		return err
	}
	g.permissionCalls = append(g.permissionCalls, permissionCall{ChannelID: channelID, TargetID: targetID, Allow: allow, Deny: deny})
	for _, c := range g.channels {
		if c.ID != channelID {
			continue
		}
		for _, o := range c.PermissionOverwrites {
			if o.ID == targetID {
				o.Allow, o.Deny = allow, deny
				return nil
			}
		}
		c.PermissionOverwrites = append(c.PermissionOverwrites, &discordgo.PermissionOverwrite{ID: targetID, Type: targetType, Allow: allow, Deny: deny})
		return nil
	}
	return notFound()
}

func (g *fakeGuild) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	msg, ok := g.messages[channelID+"/"+messageID]
	if !ok {
		return nil, notFound()
	}
	return msg, nil
}

func (g *fakeGuild) send(channelID string, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.errors["send"]; err != nil {
		return nil, err
	}
	g.sent = append(g.sent, sentMessage{ChannelID: channelID, Content: content, Embed: embed})
	msg := &discordgo.Message{ID: g.id(), ChannelID: channelID, Content: content, Author: testBot}
	if embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{embed}
	}
	g.messages[channelID+"/"+msg.ID] = msg
	return msg, nil
}

func (g *fakeGuild) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	g.mutex.Lock()
	err := g.errors["ChannelMessageSend"]
	g.mutex.Unlock()
	if err != nil {
		return nil, err
	}
	return g.send(channelID, content, nil)
}

func (g *fakeGuild) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return g.send(channelID, "", embed)
}

func (g *fakeGuild) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	g.mutex.Lock()
	delete(g.messages, channelID+"/"+messageID)
	g.mutex.Unlock()
	g.deletedMessages <- messageID
	return nil
}

func (g *fakeGuild) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.reactions = append(g.reactions, reactionCall{ChannelID: channelID, MessageID: messageID, Emoji: emojiID})
	return nil
}

func (g *fakeGuild) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.errors["UserChannelPermissions"]; err != nil {
		return 0, err
	}
	return g.userPermissions[userID], nil
}

func (g *fakeGuild) sentTo(channelID string) []sentMessage {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	var sent []sentMessage
	for _, s := range g.sent {
		if s.ChannelID == channelID {
			sent = append(sent, s)
		}
	}
	return sent
}

