package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	subjectStore "tracker/internal/adapters/storage/subject"
	"tracker/internal/application/orchestrators"
	"tracker/internal/application/projections"
	"tracker/internal/domain/confirmation"
	"tracker/internal/domain/notification"
	"tracker/internal/domain/subject"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

//go:embed templates/*.html
var templateFS embed.FS

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

// renderMarkdown converts Markdown to safe HTML, falling back to escaped text.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken":      func() string { return csrf.Token(r) },
		"renderMarkdown": renderMarkdown,
	}
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// toastView is a notification with its timeline relative to the response.
type toastView struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Color      string `json:"color"`
	Phase      string `json:"phase"`
	EnterInMs  int64  `json:"enter_in_ms"`
	LeaveInMs  int64  `json:"leave_in_ms"`
	RemoveInMs int64  `json:"remove_in_ms"`
}

func toToastViews(items []notification.Notification, now time.Time) []toastView {
	views := make([]toastView, 0, len(items))
	for _, n := range items {
		views = append(views, toastView{
			ID:         n.ID,
			Message:    n.Message,
			Severity:   n.Severity,
			Color:      n.Color,
			Phase:      n.Phase(now),
			EnterInMs:  max(n.EnterAt.Sub(now).Milliseconds(), 0),
			LeaveInMs:  max(n.LeaveAt.Sub(now).Milliseconds(), 0),
			RemoveInMs: n.Remaining(now).Milliseconds(),
		})
	}
	return views
}

// confirmationView is the pending confirmation as shown in the modal.
type confirmationView struct {
	ID   string
	HTML template.HTML
}

// handleIndex handles GET /
func handleIndex(w http.ResponseWriter, r *http.Request) {
	now := timeNow()
	data := map[string]any{
		"View":          app.Tracker.View(),
		"Notifications": toToastViews(app.Tracker.Notifications(), now),
	}
	if c, ok := app.Tracker.Pending(); ok {
		data["Confirmation"] = confirmationView{ID: c.ID, HTML: renderMarkdown(c.Message)}
	}
	renderTemplate(w, r, "index.html", data)
}

// outcomeResponse is the JSON answer to a dispatched command.
type outcomeResponse struct {
	Render        string                `json:"render"`
	Patch         *projections.RowPatch `json:"patch,omitempty"`
	Error         string                `json:"error,omitempty"`
	Notifications []toastView           `json:"notifications"`
}

// outcomeStatus maps a command error to an HTTP status.
func outcomeStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, subject.ErrInvalidInput), errors.Is(err, subject.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, confirmation.ErrNoPending):
		return http.StatusConflict
	case errors.Is(err, subjectStore.ErrCorruptData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, subjectStore.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// outcomeMessage is the client-safe description of a command error.
func outcomeMessage(err error) string {
	var verr *orchestrators.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, confirmation.ErrNoPending):
		return confirmation.ErrNoPending.Error()
	case errors.Is(err, subjectStore.ErrCorruptData):
		return subjectStore.ErrCorruptData.Error()
	case errors.Is(err, subjectStore.ErrUnavailable):
		return subjectStore.ErrUnavailable.Error()
	default:
		return "internal server error"
	}
}

// respond finishes a command request: form posts go back to the page, other
// clients get the outcome as JSON.
func respond(w http.ResponseWriter, r *http.Request, out orchestrators.Outcome) {
	status := outcomeStatus(out.Err)
	if status == http.StatusInternalServerError {
		internalError(w, out.Err)
		return
	}
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, status, outcomeResponse{
		Render:        out.Render.String(),
		Patch:         out.Patch,
		Error:         outcomeMessage(out.Err),
		Notifications: toToastViews(app.Tracker.Notifications(), timeNow()),
	})
}

// formIndex parses the Index form value.
func formIndex(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.FormValue("Index"))
	return i, err == nil
}

// handleAddSubject handles POST /subjects
func handleAddSubject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	out := app.Tracker.Dispatch(r.Context(), orchestrators.AddSubject{
		Name:     r.FormValue("Name"),
		Attended: r.FormValue("Attended"),
		Total:    r.FormValue("Total"),
	})
	respond(w, r, out)
}

// handleEditSubject handles POST /subjects/edit
func handleEditSubject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	index, ok := formIndex(r)
	if !ok {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}
	out := app.Tracker.Dispatch(r.Context(), orchestrators.EditField{
		Index: index,
		Field: r.FormValue("Field"),
		Value: r.FormValue("Value"),
	})
	respond(w, r, out)
}

// handleRemoveSubject handles POST /subjects/remove
func handleRemoveSubject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	index, ok := formIndex(r)
	if !ok {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}
	respond(w, r, app.Tracker.Dispatch(r.Context(), orchestrators.RequestRemove{Index: index}))
}

// handleSaveData handles POST /data/save
func handleSaveData(w http.ResponseWriter, r *http.Request) {
	respond(w, r, app.Tracker.Dispatch(r.Context(), orchestrators.SaveData{}))
}

// handleLoadData handles POST /data/load
func handleLoadData(w http.ResponseWriter, r *http.Request) {
	respond(w, r, app.Tracker.Dispatch(r.Context(), orchestrators.LoadData{}))
}

// handleClearData handles POST /data/clear
func handleClearData(w http.ResponseWriter, r *http.Request) {
	respond(w, r, app.Tracker.Dispatch(r.Context(), orchestrators.RequestClear{}))
}

// handleAcceptConfirmation handles POST /confirm/accept
func handleAcceptConfirmation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	respond(w, r, app.Tracker.Dispatch(r.Context(), orchestrators.AcceptConfirmation{ID: r.FormValue("ID")}))
}

// handleDeclineConfirmation handles POST /confirm/decline
// Backdrop=1 marks a click outside the dialog.
func handleDeclineConfirmation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	respond(w, r, app.Tracker.Dispatch(r.Context(), orchestrators.DeclineConfirmation{
		ID:       r.FormValue("ID"),
		Backdrop: r.FormValue("Backdrop") == "1",
	}))
}

// handleGetSubjects handles GET /api/subjects
func handleGetSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.Tracker.View())
}

// fieldEditRequest is the body of PUT /api/subjects/field.
type fieldEditRequest struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// handlePutSubjectField handles PUT /api/subjects/field
func handlePutSubjectField(w http.ResponseWriter, r *http.Request) {
	var req fieldEditRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	out := app.Tracker.Dispatch(r.Context(), orchestrators.EditField{
		Index: req.Index,
		Field: req.Field,
		Value: req.Value,
	})
	status := outcomeStatus(out.Err)
	if status == http.StatusInternalServerError {
		internalError(w, out.Err)
		return
	}
	writeJSON(w, status, outcomeResponse{
		Render:        out.Render.String(),
		Patch:         out.Patch,
		Error:         outcomeMessage(out.Err),
		Notifications: toToastViews(app.Tracker.Notifications(), timeNow()),
	})
}

// handleGetNotifications handles GET /api/notifications
func handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toToastViews(app.Tracker.Notifications(), timeNow()))
}

// handleGetPerf handles GET /api/perf
// ?minutes=N limits the window (default 60); ?top=N the list sizes (default 10).
func handleGetPerf(w http.ResponseWriter, r *http.Request) {
	if app.Collector == nil {
		http.Error(w, "performance collection disabled", http.StatusNotFound)
		return
	}
	minutes := queryInt(r, "minutes", 60)
	top := queryInt(r, "top", 10)
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, app.Collector.Snapshot(since, top))
}

// handleMetrics handles GET /metrics
func handleMetrics(w http.ResponseWriter, r *http.Request) {
	if app.Metrics == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	app.Metrics.Handler().ServeHTTP(w, r)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
