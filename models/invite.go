package models

// InviteGuild holds the resolved target of an invite code that is not on the
// guild whitelist
type InviteGuild struct {
	ID      string
	Name    string
	IconURL string
	Members int
	Active  int
}

// InviteLookup is the cached result of one invite code resolution. Valid is
// false when the external API returned no guild info, which means the code is
// either invalid or expired (the API does not distinguish the two).
type InviteLookup struct {
	Valid bool
	Guild InviteGuild
}
