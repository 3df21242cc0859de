package helpers

import (
	"strings"

	"github.com/Seklfreak/Warden/models"
	"github.com/pkg/errors"
)

// SiteAPIClient talks to the external offensive-messages store
type SiteAPIClient struct {
	BaseURL string
}

// NewSiteAPIClient builds a client for the site API configured at
// "urls.site_api"
func NewSiteAPIClient() *SiteAPIClient {
	return &SiteAPIClient{
		BaseURL: strings.TrimRight(GetConfigString("urls.site_api"), "/"),
	}
}

// CreateOffensiveMessage persists a pending deletion record
func (c *SiteAPIClient) CreateOffensiveMessage(message models.OffensiveMessage) error {
	err := NetPostJSON(c.BaseURL+"/offensive-messages", message)
	return errors.Wrap(err, "failed to store offensive message")
}

// OffensiveMessages returns all pending deletion records
func (c *SiteAPIClient) OffensiveMessages() ([]models.OffensiveMessage, error) {
	var result []models.OffensiveMessage

	err := NetGetJSON(c.BaseURL+"/offensive-messages", &result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list offensive messages")
	}

	return result, nil
}

// DeleteOffensiveMessage removes a pending deletion record
func (c *SiteAPIClient) DeleteOffensiveMessage(messageID string) error {
	err := NetDelete(c.BaseURL + "/offensive-messages/" + messageID)
	return errors.Wrap(err, "failed to delete offensive message record")
}
