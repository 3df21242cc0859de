package plugins

import (
	"errors"
	"testing"

	"github.com/Seklfreak/Warden/models"
	"github.com/bwmarrin/discordgo"
)

func testFilter(settings FilterSettings) *Filter {
	filter := &Filter{}
	filter.applySettings(settings)
	return filter
}

func TestMatchZalgo(t *testing.T) {
	filter := testFilter(FilterSettings{ZalgoEnabled: true})

	if !filter.matchZalgo("t̷̪̿ḩ̸̙̈́i̶s̵̺̈").matched {
		t.Fatalf("matchZalgo() failed to flag text full of combining marks")
	}

	if filter.matchZalgo("perfectly ordinary text").matched {
		t.Fatalf("matchZalgo() flagged plain ascii text")
	}

	if filter.matchZalgo("österreich çedilla naïve").matched {
		t.Fatalf("matchZalgo() flagged precomposed accented characters")
	}
}

func TestExpandSpoilers(t *testing.T) {
	expanded := expandSpoilers("a||b||c")
	if expanded != "ac||b||a||b||c" {
		t.Fatalf("expandSpoilers() returned %q", expanded)
	}

	expanded = expandSpoilers("no spoilers here")
	if expanded != "no spoilers hereno spoilers here" {
		t.Fatalf("expandSpoilers() returned %q for spoiler-free text", expanded)
	}
}

func TestMatchDomains(t *testing.T) {
	filter := testFilter(FilterSettings{
		DomainsEnabled:  true,
		DomainBlacklist: []string{"pornhub.com", "evil.example"},
	})

	if !filter.matchDomains("check this out https://PornHub.com/whatever").matched {
		t.Fatalf("matchDomains() missed a blacklisted domain")
	}

	if filter.matchDomains("check this out https://example.com/whatever").matched {
		t.Fatalf("matchDomains() flagged a clean URL")
	}

	// Without a scheme there is no URL, just a word
	if filter.matchDomains("I heard about evil.example from a friend once, no link though").matched {
		t.Fatalf("matchDomains() flagged a domain mention without an URL")
	}

	if filter.matchDomains("nothing interesting at all").matched {
		t.Fatalf("matchDomains() flagged text without any URL")
	}
}

func TestInviteRegexEvasions(t *testing.T) {
	cases := map[string]string{
		"join discord.gg/python":                       "python",
		"join DISCORD.GG/Python":                       "Python",
		"join discord,gg/python":                       "python",
		"join discorddotgg/python":                     "python",
		"join discord.com/invite/python":               "python",
		"join discordapp.com/invite/python":            "python",
		"join discorddotcomslashinvite/python":         "python",
		"join discord.me/python":                       "python",
		"join discord.io/python":                       "python",
		"join discorddotggslashpython":                 "python",
		"join discord.gg/python and discord.gg/golang": "python",
	}

	for text, expected := range cases {
		matches := inviteRegex.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			t.Errorf("inviteRegex missed %q", text)
			continue
		}
		if matches[0][1] != expected {
			t.Errorf("inviteRegex extracted %q from %q, expected %q", matches[0][1], text, expected)
		}
	}

	if inviteRegex.MatchString("we talked about discord yesterday") {
		t.Fatalf("inviteRegex flagged text without an invite")
	}
}

func TestMatchInvites(t *testing.T) {
	lookups := map[string]models.InviteLookup{
		"homeguild": {Valid: true, Guild: models.InviteGuild{ID: "1", Name: "Home"}},
		"evilguild": {Valid: true, Guild: models.InviteGuild{ID: "666", Name: "Evil", Members: 10}},
	}

	filter := testFilter(FilterSettings{
		InvitesEnabled:       true,
		GuildInviteWhitelist: []string{"1"},
	})
	filter.lookupInvite = func(code string) (models.InviteLookup, error) {
		lookup, ok := lookups[code]
		if !ok {
			return models.InviteLookup{}, nil
		}
		return lookup, nil
	}

	result := filter.matchInvites("join discord.gg/homeguild everyone")
	if result.matched {
		t.Fatalf("matchInvites() flagged a whitelisted guild invite")
	}

	result = filter.matchInvites("join discord.gg/evilguild everyone")
	if !result.matched || result.invalidInvite {
		t.Fatalf("matchInvites() missed a non-whitelisted guild invite")
	}
	if guild, ok := result.invites["evilguild"]; !ok || guild.Name != "Evil" {
		t.Fatalf("matchInvites() did not carry the resolved guild data")
	}

	// escape character evasion
	result = filter.matchInvites(`join discord\.gg/evilguild everyone`)
	if !result.matched {
		t.Fatalf("matchInvites() missed a backslash-escaped invite")
	}

	// Unresolvable codes are treated as violations without guild data
	result = filter.matchInvites("join discord.gg/expiredcode everyone")
	if !result.matched || !result.invalidInvite {
		t.Fatalf("matchInvites() did not return the invalid invite sentinel")
	}
	if len(result.invites) != 0 {
		t.Fatalf("matchInvites() carried guild data for an invalid invite")
	}

	if filter.matchInvites("no invites to see here").matched {
		t.Fatalf("matchInvites() flagged invite-free text")
	}
}

func TestMatchInvitesLookupFailurePanics(t *testing.T) {
	filter := testFilter(FilterSettings{InvitesEnabled: true})
	filter.lookupInvite = func(code string) (models.InviteLookup, error) {
		return models.InviteLookup{}, errors.New("api unreachable")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("matchInvites() swallowed a lookup transport error")
		}
	}()

	filter.matchInvites("join discord.gg/whatever")
}

func TestMatchWatchRegex(t *testing.T) {
	filter := testFilter(FilterSettings{
		WatchRegexEnabled: true,
		WordWatchlist:     []string{"bad(ger)?"},
		TokenWatchlist:    []string{"to+ken"},
	})

	result := filter.matchWatchRegex("what a badger that was")
	if !result.matched {
		t.Fatalf("matchWatchRegex() missed a word watchlist entry")
	}
	if result.matchedText != "badger" {
		t.Fatalf("matchWatchRegex() matched %q, expected %q", result.matchedText, "badger")
	}
	if result.searchedText[result.start:result.end] != result.matchedText {
		t.Fatalf("matchWatchRegex() returned inconsistent match positions")
	}

	if !filter.matchWatchRegex("xxtooookenxx").matched {
		t.Fatalf("matchWatchRegex() missed a token watchlist entry inside a word")
	}

	if filter.matchWatchRegex("embadgerment").matched {
		t.Fatalf("matchWatchRegex() matched a word entry without word boundaries")
	}

	// URLs are exempt from the watchlists
	if filter.matchWatchRegex("https://example.com/badger").matched {
		t.Fatalf("matchWatchRegex() flagged a watchlist hit inside an URL")
	}

	// Spoilered content cannot hide from the watchlists
	if !filter.matchWatchRegex("nothing here ||badger|| move along").matched {
		t.Fatalf("matchWatchRegex() missed a spoilered watchlist entry")
	}
}

func TestMatchWordsAndTokensAreSeparate(t *testing.T) {
	filter := testFilter(FilterSettings{
		WordWatchlist:  []string{"apple"},
		TokenWatchlist: []string{"berry"},
	})

	if !filter.matchWatchWords("an apple a day").matched {
		t.Fatalf("matchWatchWords() missed its own watchlist")
	}
	if filter.matchWatchWords("a strawberry a day").matched {
		t.Fatalf("matchWatchWords() matched a token watchlist entry")
	}

	if !filter.matchWatchTokens("a strawberry a day").matched {
		t.Fatalf("matchWatchTokens() missed its own watchlist")
	}
	if filter.matchWatchTokens("an apple a day").matched {
		t.Fatalf("matchWatchTokens() matched a word watchlist entry")
	}
}

func TestMatchRichEmbeds(t *testing.T) {
	filter := testFilter(FilterSettings{WatchRichEmbedsEnabled: true})

	msg := &discordgo.Message{
		Content: "look at this",
		Embeds: []*discordgo.MessageEmbed{
			{Type: "rich", URL: ""},
		},
	}
	if !filter.matchRichEmbeds(msg).matched {
		t.Fatalf("matchRichEmbeds() missed a self-built rich embed")
	}

	// Rich embed whose URL appears in the message is an automatic URL embed
	msg = &discordgo.Message{
		Content: "look at https://example.com/article",
		Embeds: []*discordgo.MessageEmbed{
			{Type: "rich", URL: "https://example.com/article"},
		},
	}
	if filter.matchRichEmbeds(msg).matched {
		t.Fatalf("matchRichEmbeds() flagged an automatic URL embed")
	}

	msg = &discordgo.Message{
		Content: "just an image",
		Embeds: []*discordgo.MessageEmbed{
			{Type: "image", URL: "https://example.com/image.png"},
		},
	}
	if filter.matchRichEmbeds(msg).matched {
		t.Fatalf("matchRichEmbeds() flagged a non-rich embed")
	}

	if filter.matchRichEmbeds(&discordgo.Message{Content: "no embeds"}).matched {
		t.Fatalf("matchRichEmbeds() flagged a message without embeds")
	}
}
