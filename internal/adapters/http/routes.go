package web

import "net/http"

// registerRoutes maps every URL the app serves to its handler.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)

	// Form posts; each redirects back to the page.
	mux.HandleFunc("POST /subjects", handleAddSubject)
	mux.HandleFunc("POST /subjects/edit", handleEditSubject)
	mux.HandleFunc("POST /subjects/remove", handleRemoveSubject)
	mux.HandleFunc("POST /data/save", handleSaveData)
	mux.HandleFunc("POST /data/load", handleLoadData)
	mux.HandleFunc("POST /data/clear", handleClearData)
	mux.HandleFunc("POST /confirm/accept", handleAcceptConfirmation)
	mux.HandleFunc("POST /confirm/decline", handleDeclineConfirmation)

	// JSON API
	mux.HandleFunc("GET /api/subjects", handleGetSubjects)
	mux.HandleFunc("PUT /api/subjects/field", handlePutSubjectField)
	mux.HandleFunc("GET /api/notifications", handleGetNotifications)
	mux.HandleFunc("GET /api/perf", handleGetPerf)
	mux.HandleFunc("GET /metrics", handleMetrics)
}
