package models

import (
	"time"

	"github.com/pkg/errors"
)

// DeleteDateLayout is the wire format of OffensiveMessage.DeleteDate
// (ISO-8601, UTC, second precision)
const DeleteDateLayout = "2006-01-02T15:04:05"

// OffensiveMessage is a message flagged by a watchlist rule that has to stay
// visible for the retention period and be removed afterwards. It is persisted
// in the external offensive-messages store so pending deletions survive
// restarts.
type OffensiveMessage struct {
	ID         string `json:"id"`
	ChannelID  string `json:"channel_id"`
	DeleteDate string `json:"delete_date"`
}

// DeleteTime parses the delete date of the record
func (m OffensiveMessage) DeleteTime() (time.Time, error) {
	for _, layout := range []string{
		DeleteDateLayout,
		"2006-01-02T15:04:05.999999",
		time.RFC3339,
	} {
		if parsed, err := time.Parse(layout, m.DeleteDate); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, errors.New("unable to parse delete date: " + m.DeleteDate)
}
