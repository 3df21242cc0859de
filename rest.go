package main

import (
	"expvar"
	"net/http"

	"github.com/Seklfreak/Warden/helpers"
	"github.com/Seklfreak/Warden/models"
	"github.com/emicklei/go-restful"
)

type Rest_Filter_Stats struct {
	MessagesReceived           int64
	NameAlertsSent             int64
	OffensiveMessagesScheduled int64
	OffensiveMessagesDeleted   int64
	FiltersTriggered           map[string]int64
}

type Rest_Pending_Deletions struct {
	Pending []models.OffensiveMessage
}

func NewRestServices() []*restful.WebService {
	services := make([]*restful.WebService, 0)

	service := new(restful.WebService)
	service.
		Path("/filter").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	service.Route(service.GET("/stats").To(GetFilterStats))
	service.Route(service.GET("/pending").To(GetPendingDeletions))
	services = append(services, service)

	return services
}

func GetFilterStats(request *restful.Request, response *restful.Response) {
	stats := Rest_Filter_Stats{
		MessagesReceived:           expvarInt("messages_received"),
		NameAlertsSent:             expvarInt("name_alerts_sent"),
		OffensiveMessagesScheduled: expvarInt("offensive_messages_scheduled"),
		OffensiveMessagesDeleted:   expvarInt("offensive_messages_deleted"),
		FiltersTriggered:           make(map[string]int64),
	}

	if triggered, ok := expvar.Get("filters_triggered").(*expvar.Map); ok {
		triggered.Do(func(entry expvar.KeyValue) {
			if counter, ok := entry.Value.(*expvar.Int); ok {
				stats.FiltersTriggered[entry.Key] = counter.Value()
			}
		})
	}

	response.WriteEntity(stats)
}

func GetPendingDeletions(request *restful.Request, response *restful.Response) {
	pending, err := helpers.NewSiteAPIClient().OffensiveMessages()
	if err != nil {
		response.WriteError(http.StatusBadGateway, err)
		return
	}

	response.WriteEntity(Rest_Pending_Deletions{Pending: pending})
}

func expvarInt(name string) int64 {
	if counter, ok := expvar.Get(name).(*expvar.Int); ok {
		return counter.Value()
	}
	return 0
}
