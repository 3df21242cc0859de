package main

import (
	"github.com/Seklfreak/Warden/cache"
	"github.com/Seklfreak/Warden/modules"
	"github.com/bwmarrin/discordgo"
)

// BotOnReady gets called after the gateway connected
func BotOnReady(session *discordgo.Session, event *discordgo.Ready) {
	log := cache.GetLogger()

	log.WithField("module", "bot").Info("Connected to discord!")

	// Cache the session
	cache.SetSession(session)

	// Load and init all modules
	modules.Init(session)
}

// BotOnMessageCreate gets called after a new message was sent
// This will be called after *every* message on *every* server so it should die as soon as possible
// or spawn costly work inside of coroutines.
func BotOnMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	if message.Author == nil || message.Author.ID == session.State.User.ID {
		return
	}

	modules.CallExtendedPluginOnMessage(message.Content, message.Message)
}

// BotOnMessageUpdate gets called after a message was edited. Embed updates to
// existing messages arrive through this event as well.
func BotOnMessageUpdate(session *discordgo.Session, message *discordgo.MessageUpdate) {
	if message.Message == nil || message.Author == nil || message.Author.ID == session.State.User.ID {
		return
	}

	modules.CallExtendedPluginOnMessageEdit(message)
}

// BotDestroy gets called before the bot shuts down
func BotDestroy() {
	modules.Uninit(cache.GetSession())
}
