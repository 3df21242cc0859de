package plugins

import (
	"regexp"
	"strings"
	"time"

	"github.com/Seklfreak/Warden/cache"
	"github.com/Seklfreak/Warden/helpers"
	"github.com/Seklfreak/Warden/models"
	"github.com/bwmarrin/discordgo"
	"mvdan.cc/xurls"
)

const (
	ruleKindFilter    = "filter"
	ruleKindWatchlist = "watchlist"

	filterNameZalgo           = "filter_zalgo"
	filterNameInvites         = "filter_invites"
	filterNameDomains         = "filter_domains"
	filterNameWatchRegex      = "watch_regex"
	filterNameWatchRichEmbeds = "watch_rich_embeds"
	filterNameWatchWords      = "watch_words"
	filterNameWatchTokens     = "watch_tokens"
)

var (
	// Invite links, including common ways to cheat the scanner: "dot" and
	// "slash" spelled out, comma instead of dot
	inviteRegex = regexp.MustCompile(`(?i)(?:` +
		`discord(?:[.,]|dot)gg|` +
		`discord(?:[.,]|dot)com(?:/|slash)invite|` +
		`discordapp(?:[.,]|dot)com(?:/|slash)invite|` +
		`discord(?:[.,]|dot)me|` +
		`discord(?:[.,]|dot)io` +
		`)(?:/|slash)` +
		`([a-zA-Z0-9]+)`)

	spoilerRegex = regexp.MustCompile(`(?s)\|\|.+?\|\|`)

	// Combining diacritical marks used for zalgo text
	zalgoRegex = regexp.MustCompile(`[\x{0300}-\x{036F}\x{0489}]`)
)

// matchResult is the outcome of one matcher run. Exactly one evaluation
// produces one result; results are never persisted.
type matchResult struct {
	matched bool

	// invalidInvite marks the sentinel for "some invite is present but its
	// target could not be resolved"
	invalidInvite bool

	// positional data for watchlist regex matches
	matchedText  string
	start, end   int
	searchedText string

	// resolved non-whitelisted guilds keyed by invite code
	invites map[string]models.InviteGuild
}

func boolMatch(matched bool) matchResult {
	return matchResult{matched: matched}
}

// filterRule is one content rule. The rule set is built once at startup and
// evaluated in declaration order; the first match wins.
type filterRule struct {
	name        string
	kind        string
	enabled     bool
	contentOnly bool

	matchText    func(text string) matchResult
	matchMessage func(msg *discordgo.Message) matchResult

	notifyUser       bool
	notification     string
	scheduleDeletion bool
}

// FilterSettings carries all configuration of the filter pipeline. It is
// read once at startup; rules are configuration-time immutable.
type FilterSettings struct {
	ZalgoEnabled           bool
	InvitesEnabled         bool
	DomainsEnabled         bool
	WatchRegexEnabled      bool
	WatchRichEmbedsEnabled bool
	WatchWordsEnabled      bool
	WatchTokensEnabled     bool

	NotifyUserZalgo   bool
	NotifyUserInvites bool
	NotifyUserDomains bool

	WordWatchlist        []string
	TokenWatchlist       []string
	DomainBlacklist      []string
	ChannelWhitelist     []string
	RoleWhitelist        []string
	GuildInviteWhitelist []string

	AlertChannelID           string
	PingEveryone             bool
	OffensiveMsgDeleteDays   int
	EmbedDoubleTriggerMicros int
}

func settingsFromConfig() FilterSettings {
	return FilterSettings{
		ZalgoEnabled:           helpers.GetConfigBool("filter.filter_zalgo"),
		InvitesEnabled:         helpers.GetConfigBool("filter.filter_invites"),
		DomainsEnabled:         helpers.GetConfigBool("filter.filter_domains"),
		WatchRegexEnabled:      helpers.GetConfigBool("filter.watch_regex"),
		WatchRichEmbedsEnabled: helpers.GetConfigBool("filter.watch_rich_embeds"),
		WatchWordsEnabled:      helpers.GetConfigBool("filter.watch_words"),
		WatchTokensEnabled:     helpers.GetConfigBool("filter.watch_tokens"),

		NotifyUserZalgo:   helpers.GetConfigBool("filter.notify_user_zalgo"),
		NotifyUserInvites: helpers.GetConfigBool("filter.notify_user_invites"),
		NotifyUserDomains: helpers.GetConfigBool("filter.notify_user_domains"),

		WordWatchlist:        helpers.GetConfigStrings("filter.word_watchlist"),
		TokenWatchlist:       helpers.GetConfigStrings("filter.token_watchlist"),
		DomainBlacklist:      helpers.GetConfigStrings("filter.domain_blacklist"),
		ChannelWhitelist:     helpers.GetConfigStrings("filter.channel_whitelist"),
		RoleWhitelist:        helpers.GetConfigStrings("filter.role_whitelist"),
		GuildInviteWhitelist: helpers.GetConfigStrings("filter.guild_invite_whitelist"),

		AlertChannelID:           helpers.GetConfigString("channels.mod_alerts"),
		PingEveryone:             helpers.GetConfigBool("filter.ping_everyone"),
		OffensiveMsgDeleteDays:   helpers.GetConfigInt("filter.offensive_msg_delete_days"),
		EmbedDoubleTriggerMicros: helpers.GetConfigInt("filter.embed_double_trigger_us"),
	}
}

// applySettings compiles the watchlists and builds the ordered rule table
func (f *Filter) applySettings(settings FilterSettings) {
	f.wordPatterns = make([]*regexp.Regexp, 0, len(settings.WordWatchlist))
	for _, expression := range settings.WordWatchlist {
		f.wordPatterns = append(f.wordPatterns, regexp.MustCompile(`(?i)\b`+expression+`\b`))
	}

	f.tokenPatterns = make([]*regexp.Regexp, 0, len(settings.TokenWatchlist))
	for _, expression := range settings.TokenWatchlist {
		f.tokenPatterns = append(f.tokenPatterns, regexp.MustCompile(`(?i)`+expression))
	}

	f.watchlistPatterns = make([]*regexp.Regexp, 0, len(f.wordPatterns)+len(f.tokenPatterns))
	f.watchlistPatterns = append(f.watchlistPatterns, f.wordPatterns...)
	f.watchlistPatterns = append(f.watchlistPatterns, f.tokenPatterns...)

	f.domainBlacklist = settings.DomainBlacklist
	f.channelWhitelist = stringSet(settings.ChannelWhitelist)
	f.roleWhitelist = stringSet(settings.RoleWhitelist)
	f.guildInviteWhitelist = stringSet(settings.GuildInviteWhitelist)

	f.alertChannelID = settings.AlertChannelID
	f.pingEveryone = settings.PingEveryone
	f.retention = time.Duration(settings.OffensiveMsgDeleteDays) * 24 * time.Hour
	f.embedDoubleTriggerWindow = time.Duration(settings.EmbedDoubleTriggerMicros) * time.Microsecond

	staffMistakeText := "If you believe this was a mistake, please let staff know!"

	f.rules = []filterRule{
		{
			name:        filterNameZalgo,
			kind:        ruleKindFilter,
			enabled:     settings.ZalgoEnabled,
			contentOnly: true,
			matchText:   f.matchZalgo,
			notifyUser:  settings.NotifyUserZalgo,
			notification: "Your post has been removed for abusing Unicode character rendering (aka Zalgo text). " +
				staffMistakeText,
		},
		{
			name:        filterNameInvites,
			kind:        ruleKindFilter,
			enabled:     settings.InvitesEnabled,
			contentOnly: true,
			matchText:   f.matchInvites,
			notifyUser:  settings.NotifyUserInvites,
			notification: "Per the server rules, your invite link has been removed. " +
				staffMistakeText,
		},
		{
			name:        filterNameDomains,
			kind:        ruleKindFilter,
			enabled:     settings.DomainsEnabled,
			contentOnly: true,
			matchText:   f.matchDomains,
			notifyUser:  settings.NotifyUserDomains,
			notification: "Your URL has been removed because it matched a blacklisted domain. " +
				staffMistakeText,
		},
		{
			name:        filterNameWatchRegex,
			kind:        ruleKindWatchlist,
			enabled:     settings.WatchRegexEnabled,
			contentOnly: true,
			matchText:   f.matchWatchRegex,
		},
		{
			name:         filterNameWatchRichEmbeds,
			kind:         ruleKindWatchlist,
			enabled:      settings.WatchRichEmbedsEnabled,
			contentOnly:  false,
			matchMessage: f.matchRichEmbeds,
		},
		{
			name:             filterNameWatchWords,
			kind:             ruleKindWatchlist,
			enabled:          settings.WatchWordsEnabled,
			contentOnly:      true,
			matchText:        f.matchWatchWords,
			scheduleDeletion: true,
		},
		{
			name:             filterNameWatchTokens,
			kind:             ruleKindWatchlist,
			enabled:          settings.WatchTokensEnabled,
			contentOnly:      true,
			matchText:        f.matchWatchTokens,
			scheduleDeletion: true,
		},
	}
}

func stringSet(entries []string) map[string]bool {
	result := make(map[string]bool, len(entries))
	for _, entry := range entries {
		result[entry] = true
	}
	return result
}

// expandSpoilers returns a string containing all interpretations of a
// spoilered message: the text outside spoilers, the spoilered segments and
// the full original text. Duplication is fine, the goal is that no spoilered
// content can hide from the watchlists.
func expandSpoilers(text string) string {
	var parts []string
	last := 0
	for _, loc := range spoilerRegex.FindAllStringIndex(text, -1) {
		parts = append(parts, text[last:loc[0]], text[loc[0]:loc[1]])
		last = loc[1]
	}
	parts = append(parts, text[last:])

	var builder strings.Builder
	for i := 0; i < len(parts); i += 2 {
		builder.WriteString(parts[i])
	}
	for i := 1; i < len(parts); i += 2 {
		builder.WriteString(parts[i])
	}
	for _, part := range parts {
		builder.WriteString(part)
	}
	return builder.String()
}

// matchZalgo flags text containing combining diacritical marks
func (f *Filter) matchZalgo(text string) matchResult {
	return boolMatch(zalgoRegex.MatchString(text))
}

// matchDomains flags text that contains a URL pointing at a blacklisted
// domain
func (f *Filter) matchDomains(text string) matchResult {
	if !xurls.Strict.MatchString(text) {
		return boolMatch(false)
	}

	lowered := strings.ToLower(text)
	for _, domain := range f.domainBlacklist {
		if strings.Contains(lowered, strings.ToLower(domain)) {
			return boolMatch(true)
		}
	}

	return boolMatch(false)
}

// matchInvites scans for invite links that do not point at a whitelisted
// guild. Each unique code is resolved via the invite API; a code without
// guild info terminates the scan with the invalid-invite sentinel since the
// API cannot tell invalid from expired.
func (f *Filter) matchInvites(text string) matchResult {
	// Remove backslashes to prevent escape character fuckery like
	// discord\.gg/evil-invite
	text = strings.Replace(text, "\\", "", -1)

	invites := make(map[string]models.InviteGuild)
	seen := make(map[string]bool)

	for _, match := range inviteRegex.FindAllStringSubmatch(text, -1) {
		code := match[1]
		if seen[code] {
			continue
		}
		seen[code] = true

		lookup, err := f.lookupInvite(code)
		helpers.Relax(err)

		if !lookup.Valid {
			return matchResult{matched: true, invalidInvite: true}
		}

		if f.guildInviteWhitelist[lookup.Guild.ID] {
			continue
		}

		invites[code] = lookup.Guild
	}

	if len(invites) == 0 {
		return boolMatch(false)
	}

	return matchResult{matched: true, invites: invites}
}

// matchPatterns returns the first positional match of $patterns in $text.
// Spoilered segments are expanded first and text containing a bare URL is
// exempt to avoid false positives on link targets.
func (f *Filter) matchPatterns(text string, patterns []*regexp.Regexp) matchResult {
	if spoilerRegex.MatchString(text) {
		text = expandSpoilers(text)
	}

	if xurls.Strict.MatchString(text) {
		return boolMatch(false)
	}

	for _, pattern := range patterns {
		if loc := pattern.FindStringIndex(text); loc != nil {
			return matchResult{
				matched:      true,
				matchedText:  text[loc[0]:loc[1]],
				start:        loc[0],
				end:          loc[1],
				searchedText: text,
			}
		}
	}

	return boolMatch(false)
}

func (f *Filter) matchWatchRegex(text string) matchResult {
	return f.matchPatterns(text, f.watchlistPatterns)
}

func (f *Filter) matchWatchWords(text string) matchResult {
	return f.matchPatterns(text, f.wordPatterns)
}

func (f *Filter) matchWatchTokens(text string) matchResult {
	return f.matchPatterns(text, f.tokenPatterns)
}

// matchRichEmbeds flags rich embeds that were not auto-generated from a URL
// in the message itself
func (f *Filter) matchRichEmbeds(msg *discordgo.Message) matchResult {
	for _, embed := range msg.Embeds {
		if embed.Type != "rich" {
			continue
		}

		urls := xurls.Strict.FindAllString(msg.Content, -1)

		if embed.URL == "" || !containsString(urls, embed.URL) {
			return boolMatch(true)
		}

		cache.GetLogger().WithField("module", "filter").Debug(
			"found a rich embed sent by a regular user account, but it was likely just an automatic URL embed")
		return boolMatch(false)
	}

	return boolMatch(false)
}

func containsString(haystack []string, needle string) bool {
	for _, entry := range haystack {
		if entry == needle {
			return true
		}
	}
	return false
}
