package plugins

import (
	"fmt"
	"strings"
	"time"

	"github.com/Seklfreak/Warden/cache"
	"github.com/Seklfreak/Warden/helpers"
	"github.com/Seklfreak/Warden/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
)

// nameAlertCooldown is the minimum time between two alerts for the same user
const nameAlertCooldown = 3 * 24 * time.Hour

// nameMatches collects every watchlist pattern fragment found in $name
func (f *Filter) nameMatches(name string) []string {
	var matches []string
	for _, pattern := range f.watchlistPatterns {
		if match := pattern.FindString(name); match != "" {
			matches = append(matches, match)
		}
	}
	return matches
}

// checkUsername alerts the mod log channel when the author's display name
// trips the watchlists. Alerts for the same user are rate limited through the
// persistent alert store so that an active user does not flood the channel.
func (f *Filter) checkUsername(msg *discordgo.Message) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}

	// Serialize the check so that a burst of messages from the same user
	// cannot race past the cooldown lookup
	f.nameLock.Lock()
	defer f.nameLock.Unlock()

	guildID := ""
	if channel, err := f.getChannel(msg.ChannelID); err == nil {
		guildID = channel.GuildID
	}

	name := f.displayName(guildID, msg.Author)

	matches := f.nameMatches(name)
	if len(matches) == 0 {
		return
	}

	log := cache.GetLogger().WithField("module", "filter")

	lastAlert, found, err := f.nameAlerts.LastAlert(msg.Author.ID)
	if err != nil {
		log.Error("failed to look up the last name alert: ", err.Error())
		raven.CaptureError(err, map[string]string{})
		return
	}

	if found && f.now().Sub(lastAlert) < nameAlertCooldown {
		log.Debugf("skipping name alert for %s, one was already sent recently", msg.Author.ID)
		return
	}

	log.Infof("sending a name alert for %s (%s)", name, msg.Author.ID)

	body := fmt.Sprintf(
		"**User:** %s (`%s`)\n**Display Name:** %s\n**Bad Matches:** %s",
		msg.Author.Mention(), msg.Author.ID,
		name,
		strings.Join(matches, ", "),
	)

	err = f.sendModLog(&helpers.ModLogEntry{
		IconURL:   helpers.IconNameAlert,
		Colour:    helpers.ColourSoftRed,
		Title:     "Username filtering alert",
		Body:      body,
		ChannelID: f.alertChannelID,
		Thumbnail: helpers.GetAvatarUrl(msg.Author),
	})
	helpers.Relax(err)

	helpers.Relax(f.nameAlerts.SetLastAlert(msg.Author.ID, f.now()))

	metrics.NameAlertsSent.Add(1)
}
