package modules

import "github.com/bwmarrin/discordgo"

type BaseModule interface{}

// ExtendedPlugin gets called for every message and edit event
type ExtendedPlugin interface {
	BaseModule

	Init(session *discordgo.Session)

	Uninit(session *discordgo.Session)

	OnMessage(
		content string,
		msg *discordgo.Message,
		session *discordgo.Session,
	)

	OnMessageEdit(
		update *discordgo.MessageUpdate,
		session *discordgo.Session,
	)
}
