package helpers

import (
	"strings"
	"time"

	"github.com/Seklfreak/Warden/cache"
	"github.com/Seklfreak/Warden/models"
	rediscache "github.com/go-redis/cache"
)

const (
	inviteCacheKeyPrefix = "warden:filter:invite:"
	inviteCacheExpiry    = 10 * time.Minute
)

// InviteLookupClient resolves invite codes against the chat platform's invite
// API. Lookups are cached in redis for a short while since one message sweep
// can carry the same code many times.
type InviteLookupClient struct {
	BaseURL string
	Cache   *rediscache.Codec
}

// NewInviteLookupClient builds a client for the invite API configured at
// "urls.invite_api"
func NewInviteLookupClient() *InviteLookupClient {
	return &InviteLookupClient{
		BaseURL: strings.TrimRight(GetConfigString("urls.invite_api"), "/"),
		Cache:   cache.GetRedisCacheCodec(),
	}
}

// Lookup resolves one invite code. A result with Valid set to false means the
// API returned no guild info, which happens for invalid, expired and group DM
// invites alike.
func (c *InviteLookupClient) Lookup(code string) (models.InviteLookup, error) {
	cacheKey := inviteCacheKeyPrefix + code

	if c.Cache != nil {
		var cached models.InviteLookup
		if err := c.Cache.Get(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	// The invite API responds with a JSON body even for unknown codes, so the
	// status code is ignored on purpose.
	var response struct {
		Guild *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Icon string `json:"icon"`
		} `json:"guild"`
		ApproximateMemberCount   int `json:"approximate_member_count"`
		ApproximatePresenceCount int `json:"approximate_presence_count"`
	}

	err := NetGetJSONIgnoreStatus(c.BaseURL+"/"+code+"?with_counts=true", &response)
	if err != nil {
		return models.InviteLookup{}, err
	}

	result := models.InviteLookup{}
	if response.Guild != nil {
		result.Valid = true
		result.Guild = models.InviteGuild{
			ID:      response.Guild.ID,
			Name:    response.Guild.Name,
			IconURL: "https://cdn.discordapp.com/icons/" + response.Guild.ID + "/" + response.Guild.Icon + ".png?size=512",
			Members: response.ApproximateMemberCount,
			Active:  response.ApproximatePresenceCount,
		}
	}

	if c.Cache != nil {
		c.Cache.Set(&rediscache.Item{
			Key:        cacheKey,
			Object:     result,
			Expiration: inviteCacheExpiry,
		})
	}

	return result, nil
}
