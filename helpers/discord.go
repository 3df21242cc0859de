package helpers

import (
	"net/http"

	"github.com/Seklfreak/Warden/cache"
	"github.com/bwmarrin/discordgo"
)

// GetChannel returns a channel from the state cache, falling back to the API
func GetChannel(channelID string) (*discordgo.Channel, error) {
	channel, err := cache.GetSession().State.Channel(channelID)
	if err == nil {
		return channel, nil
	}

	return cache.GetSession().Channel(channelID)
}

// GetGuildMember returns a guild member from the state cache, falling back to the API
func GetGuildMember(guildID string, userID string) (*discordgo.Member, error) {
	member, err := cache.GetSession().State.Member(guildID, userID)
	if err == nil {
		return member, nil
	}

	return cache.GetSession().GuildMember(guildID, userID)
}

// GetMemberRoles returns the role IDs a user holds on a guild, or nil if the
// member cannot be resolved
func GetMemberRoles(guildID string, userID string) []string {
	if guildID == "" {
		return nil
	}

	member, err := GetGuildMember(guildID, userID)
	if err != nil {
		return nil
	}

	return member.Roles
}

// GetDisplayName returns the guild nickname of a user if set, the username otherwise
func GetDisplayName(guildID string, user *discordgo.User) string {
	if guildID != "" {
		member, err := GetGuildMember(guildID, user.ID)
		if err == nil && member.Nick != "" {
			return member.Nick
		}
	}

	return user.Username
}

// GetAvatarUrl returns the avatar url for $user
func GetAvatarUrl(user *discordgo.User) string {
	return user.AvatarURL("512")
}

// GetMessageLink builds the jump link for $msg
func GetMessageLink(msg *discordgo.Message) string {
	guildID := "@me"

	channel, err := GetChannel(msg.ChannelID)
	if err == nil && channel.GuildID != "" {
		guildID = channel.GuildID
	}

	return "https://discordapp.com/channels/" + guildID + "/" + msg.ChannelID + "/" + msg.ID
}

// NotifyMember DMs $text to $user, falling back to a mention in $channelID if
// the DM is refused
func NotifyMember(user *discordgo.User, channelID string, text string) {
	session := cache.GetSession()

	dmChannel, err := session.UserChannelCreate(user.ID)
	if err == nil {
		_, err = session.ChannelMessageSend(dmChannel.ID, text)
		if err == nil {
			return
		}
	}

	_, err = session.ChannelMessageSend(channelID, user.Mention()+" "+text)
	if err != nil {
		cache.GetLogger().WithField("module", "helpers").Warnf(
			"failed to notify user #%s in channel #%s: %s", user.ID, channelID, err.Error())
	}
}

// IsDiscordNotFound checks whether $err is an "unknown message" or plain 404
// response from the discord API
func IsDiscordNotFound(err error) bool {
	if err == nil {
		return false
	}

	if restErr, ok := err.(*discordgo.RESTError); ok {
		if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
			return true
		}
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return true
		}
	}

	return false
}
