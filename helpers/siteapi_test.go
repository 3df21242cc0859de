package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Seklfreak/Warden/models"
)

func TestSiteAPIOffensiveMessages(t *testing.T) {
	var created models.OffensiveMessage
	var deletedID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/offensive-messages":
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusCreated)
		case r.Method == "GET" && r.URL.Path == "/offensive-messages":
			w.Write([]byte(`[{"id": "42", "channel_id": "7", "delete_date": "2026-09-06T10:00:00"}]`))
		case r.Method == "DELETE":
			deletedID = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := &SiteAPIClient{BaseURL: server.URL}

	err := client.CreateOffensiveMessage(models.OffensiveMessage{
		ID: "42", ChannelID: "7", DeleteDate: "2026-09-06T10:00:00",
	})
	if err != nil {
		t.Fatalf("CreateOffensiveMessage() returned an error: %s", err.Error())
	}
	if created.ID != "42" || created.ChannelID != "7" {
		t.Fatalf("CreateOffensiveMessage() sent a wrong payload: %+v", created)
	}

	pending, err := client.OffensiveMessages()
	if err != nil {
		t.Fatalf("OffensiveMessages() returned an error: %s", err.Error())
	}
	if len(pending) != 1 || pending[0].ID != "42" {
		t.Fatalf("OffensiveMessages() returned wrong records: %+v", pending)
	}
	if _, err := pending[0].DeleteTime(); err != nil {
		t.Fatalf("the returned delete date does not parse: %s", err.Error())
	}

	err = client.DeleteOffensiveMessage("42")
	if err != nil {
		t.Fatalf("DeleteOffensiveMessage() returned an error: %s", err.Error())
	}
	if deletedID != "/offensive-messages/42" {
		t.Fatalf("DeleteOffensiveMessage() hit a wrong path: %s", deletedID)
	}
}

func TestSiteAPIDeleteGoneRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := &SiteAPIClient{BaseURL: server.URL}

	// Deleting a record that is already gone is not an error
	if err := client.DeleteOffensiveMessage("42"); err != nil {
		t.Fatalf("DeleteOffensiveMessage() errored on an already deleted record: %s", err.Error())
	}
}
