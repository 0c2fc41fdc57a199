package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event", deps.EventHandler.ReplaceEvents).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")

	// Calendar views
	r.HandleFunc("/api/view/day", deps.ViewHandler.Day).Methods("GET")
	r.HandleFunc("/api/view/week", deps.ViewHandler.Week).Methods("GET")
	r.HandleFunc("/api/view/month", deps.ViewHandler.Month).Methods("GET")

	// Drafts
	r.HandleFunc("/api/draft", deps.DraftHandler.List).Methods("GET")
	r.HandleFunc("/api/draft", deps.DraftHandler.Open).Methods("POST")
	r.HandleFunc("/api/draft/{draftId}", deps.DraftHandler.Get).Methods("GET")
	r.HandleFunc("/api/draft/{draftId}", deps.DraftHandler.Update).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}", deps.DraftHandler.Close).Methods("DELETE")
	r.HandleFunc("/api/draft/{draftId}/lock", deps.DraftHandler.Lock).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}/commit", deps.DraftHandler.Commit).Methods("POST")

	// Import / export
	r.HandleFunc("/api/export/json", deps.EventHandler.ExportJSON).Methods("GET")
	r.HandleFunc("/api/export/csv", deps.EventHandler.ExportCSV).Methods("GET")
	r.HandleFunc("/api/import/json", deps.EventHandler.ReplaceEvents).Methods("POST")
	r.HandleFunc("/api/export/ics", deps.IcsHandler.ExportICS).Methods("GET")
	r.HandleFunc("/api/import/ics", deps.IcsHandler.ImportICS).Methods("POST")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current/settings", deps.UserHandler.UpdateSettings).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
}
