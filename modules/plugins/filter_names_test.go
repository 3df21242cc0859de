package plugins

import (
	"strings"
	"testing"
	"time"
)

func TestNameAlertSent(t *testing.T) {
	harness := newFilterHarness(FilterSettings{
		TokenWatchlist: []string{"sl[u*]rs?"},
	})

	msg := testMessage("1", "hello")
	msg.Author.Username = "definitely-a-slur-here"

	harness.filter.checkUsername(msg)

	if len(harness.modLogEntries) != 1 {
		t.Fatalf("expected one name alert, got %d", len(harness.modLogEntries))
	}
	if harness.modLogEntries[0].Title != "Username filtering alert" {
		t.Fatalf("unexpected alert title %q", harness.modLogEntries[0].Title)
	}
	if !strings.Contains(harness.modLogEntries[0].Body, "slur") {
		t.Fatalf("the alert does not name the bad match: %q", harness.modLogEntries[0].Body)
	}
	if harness.alerts.writes != 1 {
		t.Fatalf("the alert timestamp was not persisted")
	}
}

func TestNameAlertCooldown(t *testing.T) {
	harness := newFilterHarness(FilterSettings{
		TokenWatchlist: []string{"slur"},
	})

	msg := testMessage("1", "hello")
	msg.Author.Username = "definitely-a-slur-here"

	harness.filter.checkUsername(msg)
	harness.filter.checkUsername(msg)

	if len(harness.modLogEntries) != 1 {
		t.Fatalf("expected a single alert within the cooldown window, got %d", len(harness.modLogEntries))
	}
	if harness.alerts.writes != 1 {
		t.Fatalf("expected a single timestamp write within the cooldown window, got %d", harness.alerts.writes)
	}
}

func TestNameAlertAfterCooldownExpires(t *testing.T) {
	harness := newFilterHarness(FilterSettings{
		TokenWatchlist: []string{"slur"},
	})

	now := time.Now()
	harness.filter.now = func() time.Time { return now }

	msg := testMessage("1", "hello")
	msg.Author.Username = "definitely-a-slur-here"

	harness.filter.checkUsername(msg)

	// 3 days later the next alert goes through again
	harness.filter.now = func() time.Time { return now.Add(nameAlertCooldown + time.Minute) }
	harness.filter.checkUsername(msg)

	if len(harness.modLogEntries) != 2 {
		t.Fatalf("expected a second alert after the cooldown expired, got %d", len(harness.modLogEntries))
	}
}

func TestNameAlertCleanUsername(t *testing.T) {
	harness := newFilterHarness(FilterSettings{
		TokenWatchlist: []string{"slur"},
	})

	msg := testMessage("1", "hello")
	msg.Author.Username = "perfectly-fine-name"

	harness.filter.checkUsername(msg)

	if len(harness.modLogEntries) != 0 {
		t.Fatalf("a clean username triggered an alert")
	}
	if harness.alerts.writes != 0 {
		t.Fatalf("a clean username wrote a cooldown timestamp")
	}
}

func TestNameMatchesCollectsAllPatterns(t *testing.T) {
	harness := newFilterHarness(FilterSettings{
		WordWatchlist:  []string{"apple"},
		TokenWatchlist: []string{"berry"},
	})

	matches := harness.filter.nameMatches("apple-strawberry-fan")
	if len(matches) != 2 {
		t.Fatalf("expected both watchlists to match, got %v", matches)
	}
}
