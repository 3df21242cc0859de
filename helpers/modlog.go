package helpers

import (
	"github.com/Seklfreak/Warden/cache"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// Embed colours and icons used for moderation alerts
const (
	ColourSoftRed = 0xcd6d6d

	IconFiltering = "https://cdn.discordapp.com/emojis/472472638594252832.png"
	IconNameAlert = "https://cdn.discordapp.com/emojis/470326273298792469.png"
)

// ModLogEntry describes one alert for the moderation log channel
type ModLogEntry struct {
	IconURL      string
	Colour       int
	Title        string
	Body         string
	ChannelID    string
	Thumbnail    string
	PingEveryone bool

	// Extra embeds shown below the alert, e.g. resolved invite guilds or the
	// offending rich embeds themselves
	AdditionalEmbeds    []*discordgo.MessageEmbed
	AdditionalEmbedsMsg string
}

// SendModLog posts one alert embed (plus any additional embeds) to the
// moderation log channel
func SendModLog(entry *ModLogEntry) error {
	session := cache.GetSession()

	embed := &discordgo.MessageEmbed{
		Description: entry.Body,
		Color:       entry.Colour,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    entry.Title,
			IconURL: entry.IconURL,
		},
	}
	if entry.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: entry.Thumbnail}
	}

	content := ""
	if entry.PingEveryone {
		content = "@everyone"
	}

	_, err := session.ChannelMessageSendComplex(entry.ChannelID, &discordgo.MessageSend{
		Content: content,
		Embed:   embed,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send mod log embed")
	}

	if len(entry.AdditionalEmbeds) > 0 {
		if entry.AdditionalEmbedsMsg != "" {
			_, err = session.ChannelMessageSend(entry.ChannelID, entry.AdditionalEmbedsMsg)
			if err != nil {
				return errors.Wrap(err, "failed to send additional embeds message")
			}
		}

		for _, additionalEmbed := range entry.AdditionalEmbeds {
			_, err = session.ChannelMessageSendEmbed(entry.ChannelID, additionalEmbed)
			if err != nil {
				return errors.Wrap(err, "failed to send additional embed")
			}
		}
	}

	return nil
}
