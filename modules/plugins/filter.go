package plugins

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Seklfreak/Warden/cache"
	"github.com/Seklfreak/Warden/helpers"
	"github.com/Seklfreak/Warden/metrics"
	"github.com/Seklfreak/Warden/models"
	"github.com/Seklfreak/Warden/scheduler"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/getsentry/raven-go"
)

// chatSession is the slice of the discord session the filter needs for
// deleting and fetching messages
type chatSession interface {
	ChannelMessageDelete(channelID string, messageID string) error
	ChannelMessage(channelID string, messageID string) (*discordgo.Message, error)
}

// offensiveMessageStore is the external store keeping pending deletions
// across restarts
type offensiveMessageStore interface {
	CreateOffensiveMessage(message models.OffensiveMessage) error
	OffensiveMessages() ([]models.OffensiveMessage, error)
	DeleteOffensiveMessage(messageID string) error
}

// Filter inspects every message and edit against the configured content
// rules, removes or reports violations and schedules delayed deletion of
// flagged offensive messages. It also watches usernames for watchlist
// matches.
type Filter struct {
	rules []filterRule

	wordPatterns      []*regexp.Regexp
	tokenPatterns     []*regexp.Regexp
	watchlistPatterns []*regexp.Regexp

	domainBlacklist      []string
	channelWhitelist     map[string]bool
	roleWhitelist        map[string]bool
	guildInviteWhitelist map[string]bool

	alertChannelID           string
	pingEveryone             bool
	retention                time.Duration
	embedDoubleTriggerWindow time.Duration

	session      chatSession
	getChannel   func(channelID string) (*discordgo.Channel, error)
	memberRoles  func(guildID string, userID string) []string
	displayName  func(guildID string, user *discordgo.User) string
	notifyMember func(user *discordgo.User, channelID string, text string)
	sendModLog   func(entry *helpers.ModLogEntry) error
	messageLink  func(msg *discordgo.Message) string
	lookupInvite func(code string) (models.InviteLookup, error)

	store      offensiveMessageStore
	nameAlerts helpers.NameAlertStore
	scheduler  *scheduler.Scheduler

	nameLock sync.Mutex
	now      func() time.Time
}

func (f *Filter) Init(session *discordgo.Session) {
	f.applySettings(settingsFromConfig())

	inviteClient := helpers.NewInviteLookupClient()

	f.session = session
	f.getChannel = helpers.GetChannel
	f.memberRoles = helpers.GetMemberRoles
	f.displayName = helpers.GetDisplayName
	f.notifyMember = helpers.NotifyMember
	f.sendModLog = helpers.SendModLog
	f.messageLink = helpers.GetMessageLink
	f.lookupInvite = inviteClient.Lookup
	f.store = helpers.NewSiteAPIClient()
	f.nameAlerts = &helpers.RedisNameAlertStore{}
	f.scheduler = scheduler.New()
	f.now = time.Now

	go func() {
		defer helpers.Recover()

		f.rescheduleOffensiveMessages()
	}()
}

func (f *Filter) Uninit(session *discordgo.Session) {
	if f.scheduler != nil {
		f.scheduler.Clear()
	}
}

// OnMessage runs the message filter and the username check for new messages
func (f *Filter) OnMessage(content string, msg *discordgo.Message, session *discordgo.Session) {
	f.filterMessage(msg, 0, false)
	f.checkUsername(msg)
}

// OnMessageEdit runs the message filter for edits. The time delta to the
// previous edit (or the creation time for a first edit) is used to suppress
// double triggers of the rich embed watcher.
func (f *Filter) OnMessageEdit(update *discordgo.MessageUpdate, session *discordgo.Session) {
	after := update.Message
	if after == nil || after.Author == nil {
		return
	}

	haveDelta := false
	var delta time.Duration

	if before := update.BeforeUpdate; before != nil && after.EditedTimestamp != "" {
		previousRaw := before.EditedTimestamp
		if previousRaw == "" {
			previousRaw = before.Timestamp
		}

		previous, errBefore := previousRaw.Parse()
		current, errAfter := after.EditedTimestamp.Parse()
		if errBefore == nil && errAfter == nil {
			delta = current.Sub(previous)
			haveDelta = true
		}
	}

	f.filterMessage(after, delta, haveDelta)
}

// filterMessage checks $msg against all enabled rules and responds to the
// first match
func (f *Filter) filterMessage(msg *discordgo.Message, editDelta time.Duration, haveEditDelta bool) {
	if msg.Author == nil {
		return
	}

	// Ignore the event if we cannot resolve the channel
	channel, err := f.getChannel(msg.ChannelID)
	if err != nil {
		go raven.CaptureError(err, map[string]string{})
		return
	}

	if !f.shouldFilter(msg, channel) {
		return
	}

	isPrivate := channel.Type == discordgo.ChannelTypeDM

	for i := range f.rules {
		rule := &f.rules[i]
		if !rule.enabled {
			continue
		}

		// Embed edits can be delivered twice by the gateway. When two edit
		// timestamps are nearly identical we are looking at the same edit
		// again, not at a genuine rapid edit.
		if rule.name == filterNameWatchRichEmbeds && haveEditDelta && editDelta < f.embedDoubleTriggerWindow {
			continue
		}

		var result matchResult
		if rule.contentOnly {
			result = rule.matchText(msg.Content)
		} else {
			result = rule.matchMessage(msg)
		}

		if !result.matched {
			continue
		}

		if rule.kind == ruleKindFilter && !isPrivate {
			err = f.session.ChannelMessageDelete(msg.ChannelID, msg.ID)
			if err != nil {
				// A concurrent handler already deleted the message. Stop
				// processing this event entirely so the user is not notified
				// and the alert is not logged twice.
				if helpers.IsDiscordNotFound(err) {
					return
				}
				helpers.Relax(err)
			}

			if rule.notifyUser {
				f.notifyMember(msg.Author, msg.ChannelID, rule.notification)
			}
		}

		if rule.scheduleDeletion && !isPrivate {
			f.scheduleOffensiveDeletion(msg)
		}

		f.reportMatch(rule, msg, result, isPrivate)

		metrics.FiltersTriggered.Add(rule.name, 1)

		// We don't want multiple filters to trigger
		return
	}
}

// shouldFilter applies the channel, role and bot exemptions
func (f *Filter) shouldFilter(msg *discordgo.Message, channel *discordgo.Channel) bool {
	if msg.Author.Bot {
		return false
	}

	if f.channelWhitelist[msg.ChannelID] {
		return false
	}

	for _, roleID := range f.memberRoles(channel.GuildID, msg.Author.ID) {
		if f.roleWhitelist[roleID] {
			return false
		}
	}

	return true
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"~", "\\~",
	"`", "\\`",
	"|", "\\|",
	">", "\\>",
)

// escapeMarkdown neutralizes markdown in user-provided text before it is
// embedded into an alert
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// reportMatch sends the alert for one triggered rule to the moderation log
// channel
func (f *Filter) reportMatch(rule *filterRule, msg *discordgo.Message, result matchResult, isPrivate bool) {
	channelText := "via DM"
	if !isPrivate {
		channelText = "in <#" + msg.ChannelID + ">"
	}

	messageContent := msg.Content
	if rule.name == filterNameWatchRegex && result.matchedText != "" {
		surroundingsStart := result.start - 10
		if surroundingsStart < 0 {
			surroundingsStart = 0
		}
		surroundingsEnd := result.end + 10
		if surroundingsEnd > len(result.searchedText) {
			surroundingsEnd = len(result.searchedText)
		}

		messageContent = fmt.Sprintf(
			"**Match:** '%s'\n**Location:** '...%s...'\n\n**Original Message:**\n%s",
			escapeMarkdown(result.matchedText),
			escapeMarkdown(result.searchedText[surroundingsStart:surroundingsEnd]),
			escapeMarkdown(msg.Content),
		)
	}

	body := fmt.Sprintf(
		"The %s %s was triggered by **%s** (`%s`) %s with [the following message](%s):\n\n%s",
		rule.name, rule.kind,
		msg.Author.Username, msg.Author.ID,
		channelText, f.messageLink(msg),
		messageContent,
	)

	cache.GetLogger().WithField("module", "filter").Debug(body)

	var additionalEmbeds []*discordgo.MessageEmbed
	additionalEmbedsMsg := ""

	// Invalid invites carry no data, so no supplementary embeds can be built
	// for them
	if rule.name == filterNameInvites && !result.invalidInvite && len(result.invites) > 0 {
		for code, guild := range result.invites {
			additionalEmbeds = append(additionalEmbeds, &discordgo.MessageEmbed{
				Description: fmt.Sprintf(
					"**Members:**\n%s\n**Active:**\n%s",
					humanize.Comma(int64(guild.Members)),
					humanize.Comma(int64(guild.Active)),
				),
				Author:    &discordgo.MessageEmbedAuthor{Name: guild.Name},
				Thumbnail: &discordgo.MessageEmbedThumbnail{URL: guild.IconURL},
				Footer:    &discordgo.MessageEmbedFooter{Text: "Guild Invite Code: " + code},
			})
		}
		additionalEmbedsMsg = "For the following guild(s):"
	} else if rule.name == filterNameWatchRichEmbeds {
		additionalEmbeds = msg.Embeds
		additionalEmbedsMsg = "With the following embed(s):"
	}

	err := f.sendModLog(&helpers.ModLogEntry{
		IconURL:             helpers.IconFiltering,
		Colour:              helpers.ColourSoftRed,
		Title:               strings.Title(rule.kind) + " triggered!",
		Body:                body,
		ChannelID:           f.alertChannelID,
		Thumbnail:           helpers.GetAvatarUrl(msg.Author),
		PingEveryone:        f.pingEveryone,
		AdditionalEmbeds:    additionalEmbeds,
		AdditionalEmbedsMsg: additionalEmbedsMsg,
	})
	helpers.Relax(err)
}

// scheduleOffensiveDeletion stores a pending deletion record for $msg and
// registers the deferred deletion task
func (f *Filter) scheduleOffensiveDeletion(msg *discordgo.Message) {
	createdAt, err := msg.Timestamp.Parse()
	helpers.Relax(err)

	deleteAt := createdAt.Add(f.retention).UTC()
	record := models.OffensiveMessage{
		ID:         msg.ID,
		ChannelID:  msg.ChannelID,
		DeleteDate: deleteAt.Format(models.DeleteDateLayout),
	}

	helpers.Relax(f.store.CreateOffensiveMessage(record))

	f.scheduler.Schedule(record.ID, deleteAt, func() {
		defer helpers.Recover()

		f.deleteOffensiveMessage(record)
	})

	metrics.OffensiveMessagesScheduled.Add(1)
	cache.GetLogger().WithField("module", "filter").Debugf(
		"offensive message #%s will be deleted on %s", record.ID, record.DeleteDate)
}

// rescheduleOffensiveMessages fetches all pending deletions from the store on
// boot and reschedules them. Records that are already due are deleted right
// away.
func (f *Filter) rescheduleOffensiveMessages() {
	log := cache.GetLogger().WithField("module", "filter")

	records, err := f.store.OffensiveMessages()
	if err != nil {
		log.Error("failed to fetch pending offensive messages: ", err.Error())
		raven.CaptureError(err, map[string]string{})
		return
	}

	now := f.now().UTC()

	for _, record := range records {
		deleteAt, err := record.DeleteTime()
		if err != nil {
			log.Warnf("skipping offensive message #%s: %s", record.ID, err.Error())
			continue
		}

		if deleteAt.Before(now) {
			f.deleteOffensiveMessage(record)
		} else {
			record := record
			f.scheduler.Schedule(record.ID, deleteAt, func() {
				defer helpers.Recover()

				f.deleteOffensiveMessage(record)
			})
		}
	}

	log.Infof("rescheduled %d pending offensive message deletions", len(records))
}

// deleteOffensiveMessage removes the flagged message from the channel and the
// record from the store. Transport failures are not retried; the record is
// purged regardless.
func (f *Filter) deleteOffensiveMessage(record models.OffensiveMessage) {
	log := cache.GetLogger().WithField("module", "filter")

	err := f.session.ChannelMessageDelete(record.ChannelID, record.ID)
	if err != nil {
		if helpers.IsDiscordNotFound(err) {
			log.Infof("tried to delete message #%s, but it is already gone", record.ID)
		} else {
			log.Warnf("failed to delete message #%s: %s", record.ID, err.Error())
		}
	}

	err = f.store.DeleteOffensiveMessage(record.ID)
	if err != nil {
		log.Warnf("failed to delete offensive message record #%s: %s", record.ID, err.Error())
	}

	metrics.OffensiveMessagesDeleted.Add(1)
	log.Infof("deleted the offensive message with id #%s", record.ID)
}
