package metrics

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/Seklfreak/Warden/cache"
	"github.com/Seklfreak/Warden/helpers"
	"github.com/bwmarrin/discordgo"
)

var (
	// MessagesReceived counts all ever received messages
	MessagesReceived = expvar.NewInt("messages_received")

	// FiltersTriggered counts triggered matches per filter rule
	FiltersTriggered = expvar.NewMap("filters_triggered")

	// NameAlertsSent counts username filtering alerts
	NameAlertsSent = expvar.NewInt("name_alerts_sent")

	// OffensiveMessagesScheduled counts messages handed to the deferred
	// deletion scheduler
	OffensiveMessagesScheduled = expvar.NewInt("offensive_messages_scheduled")

	// OffensiveMessagesDeleted counts completed deferred deletions
	OffensiveMessagesDeleted = expvar.NewInt("offensive_messages_deleted")

	// CoroutineCount counts all running goroutines
	CoroutineCount = expvar.NewInt("coroutine_count")

	// Uptime stores the timestamp of the bot's boot
	Uptime = expvar.NewInt("uptime")
)

// Init starts the expvar http endpoint
func Init() {
	address := helpers.GetConfigString("metrics.address")
	cache.GetLogger().WithField("module", "metrics").Info("Listening on " + address)
	Uptime.Set(time.Now().Unix())
	go http.ListenAndServe(address, nil)
}

// OnReady listens for said discord event
func OnReady(session *discordgo.Session, event *discordgo.Ready) {
	go CollectRuntimeMetrics()
}

// OnMessageCreate listens for said discord event
func OnMessageCreate(session *discordgo.Session, event *discordgo.MessageCreate) {
	MessagesReceived.Add(1)
}

// CollectRuntimeMetrics counts all running goroutines
func CollectRuntimeMetrics() {
	for {
		time.Sleep(15 * time.Second)
		CoroutineCount.Set(int64(runtime.NumGoroutine()))
	}
}
