package modules

import (
	"strings"

	"github.com/Seklfreak/Warden/cache"
	"github.com/Seklfreak/Warden/helpers"
	"github.com/bwmarrin/discordgo"
)

// Init initializes the plugins
func Init(session *discordgo.Session) {
	for _, plugin := range PluginExtendedList {
		cache.GetLogger().WithField("module", "modules").Info(
			"[EXTENDED-PLUG] initializing " + helpers.Typeof(plugin))

		plugin.Init(session)
	}
}

// Uninit deinitializes the plugins
func Uninit(session *discordgo.Session) {
	for _, plugin := range PluginExtendedList {
		cache.GetLogger().WithField("module", "modules").Info(
			"[EXTENDED-PLUG] " + helpers.Typeof(plugin) + " deinitializing…")

		plugin.Uninit(session)
	}
}

func CallExtendedPluginOnMessage(content string, msg *discordgo.Message) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnMessage(strings.TrimSpace(content), msg, cache.GetSession())
	}
}

func CallExtendedPluginOnMessageEdit(update *discordgo.MessageUpdate) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnMessageEdit(update, cache.GetSession())
	}
}
