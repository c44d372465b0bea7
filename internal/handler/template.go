package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yewon-dev/gongjucal/internal/auth"
	"github.com/yewon-dev/gongjucal/internal/calendar"
	"github.com/yewon-dev/gongjucal/internal/model"
	"github.com/yewon-dev/gongjucal/internal/store"
	"github.com/yewon-dev/gongjucal/internal/websocket"
	"github.com/yewon-dev/gongjucal/web"
)

// formDateLayout is the datetime-local input format. Keeping hours and
// minutes here preserves an event's time-of-day across edits even though the
// grid only places by day.
const formDateLayout = "2006-01-02T15:04"

var weekdays = []string{"일", "월", "화", "수", "목", "금", "토"}

type TemplateHandler struct {
	events    *store.EventStore
	hub       *websocket.Hub
	templates *template.Template
	logger    *slog.Logger
}

func NewTemplateHandler(es *store.EventStore, hub *websocket.Hub, logger *slog.Logger) *TemplateHandler {
	tmpl := template.Must(template.ParseFS(web.Templates, "templates/calendar.html", "templates/grid.html", "templates/event_form.html"))
	return &TemplateHandler{
		events:    es,
		hub:       hub,
		templates: tmpl,
		logger:    logger,
	}
}

type gridView struct {
	Title    string
	MonthKey string
	PrevKey  string
	NextKey  string
	Weekdays []string
	Cells    []calendar.Day
	Username string
}

type calendarView struct {
	Grid     gridView
	Username string
	Color    string
}

type formView struct {
	Editing   bool
	EventID   int64
	Title     string
	DateValue string
	Heading   string
	MonthKey  string
}

// CalendarPage renders the month view. A failed event fetch is logged and
// the grid renders empty; it is never a blocking error.
func (h *TemplateHandler) CalendarPage(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	month := calendar.ParseMonth(r.URL.Query().Get("month"), time.Now())

	data := calendarView{
		Grid:     h.gridViewFor(month, id.Username),
		Username: id.Username,
		Color:    id.Color,
	}
	if err := h.templates.ExecuteTemplate(w, "calendar.html", data); err != nil {
		h.logger.Error("render calendar", "error", err)
	}
}

// CalendarGrid re-renders just the grid. Used for month navigation and for
// resynchronizing after any mutation.
func (h *TemplateHandler) CalendarGrid(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	month := calendar.ParseMonth(r.URL.Query().Get("month"), time.Now())
	h.renderGrid(w, month, id.Username)
}

// EventNewForm opens the modal pre-filled with the clicked day. Prior form
// content is discarded by replacing the modal wholesale.
func (h *TemplateHandler) EventNewForm(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	view := formView{
		Editing:   false,
		DateValue: day.Format(formDateLayout),
		Heading:   dayHeading(day, "추가"),
		MonthKey:  r.URL.Query().Get("month"),
	}
	h.renderTemplate(w, "event-form", view)
}

// EventEditForm opens the modal pre-filled with an owned event.
func (h *TemplateHandler) EventEditForm(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadOwnedPage(w, r)
	if !ok {
		return
	}

	view := formView{
		Editing:   true,
		EventID:   event.ID,
		Title:     event.Title,
		DateValue: event.Date.Format(formDateLayout),
		Heading:   dayHeading(event.Date, "수정"),
		MonthKey:  r.URL.Query().Get("month"),
	}
	h.renderTemplate(w, "event-form", view)
}

// EventCreate handles the modal's create submit, then closes the modal and
// re-renders the grid from a fresh read of the store.
func (h *TemplateHandler) EventCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	month := calendar.ParseMonth(r.FormValue("month"), time.Now())

	title, date, ok := parseEventForm(r)
	if ok {
		created, err := h.events.Create(title, date, id.UserID)
		if err != nil {
			// Logged only; the grid re-renders from last known state.
			h.logger.Error("create event", "error", err)
		} else {
			h.hub.NotifyEventChange("created", created.ID)
		}
	}

	h.closeModal(w)
	h.renderGrid(w, month, id.Username)
}

// EventUpdate handles the modal's edit submit for an owned event.
func (h *TemplateHandler) EventUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	month := calendar.ParseMonth(r.FormValue("month"), time.Now())

	event, ok := h.loadOwnedPage(w, r)
	if !ok {
		return
	}

	title, date, formOK := parseEventForm(r)
	if formOK {
		if _, err := h.events.Update(event.ID, title, date); err != nil {
			h.logger.Error("update event", "error", err)
		} else {
			h.hub.NotifyEventChange("updated", event.ID)
		}
	}

	h.closeModal(w)
	h.renderGrid(w, month, id.Username)
}

// EventDelete removes an owned event after the client-side confirmation,
// then resynchronizes the grid.
func (h *TemplateHandler) EventDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	month := calendar.ParseMonth(r.URL.Query().Get("month"), time.Now())

	event, ok := h.loadOwnedPage(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(event.ID); err != nil {
		h.logger.Error("delete event", "error", err)
	} else {
		h.hub.NotifyEventChange("deleted", event.ID)
	}

	h.renderGrid(w, month, id.Username)
}

func (h *TemplateHandler) gridViewFor(month time.Time, username string) gridView {
	events, err := h.events.List()
	if err != nil {
		h.logger.Error("list events", "error", err)
		events = nil
	}

	return gridView{
		Title:    calendar.Title(month),
		MonthKey: calendar.MonthKey(month),
		PrevKey:  calendar.MonthKey(calendar.Prev(month)),
		NextKey:  calendar.MonthKey(calendar.Next(month)),
		Weekdays: weekdays,
		Cells:    calendar.Grid(month, events),
		Username: username,
	}
}

func (h *TemplateHandler) renderGrid(w http.ResponseWriter, month time.Time, username string) {
	h.renderTemplate(w, "grid", h.gridViewFor(month, username))
}

func (h *TemplateHandler) renderTemplate(w http.ResponseWriter, name string, data any) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template", "template", name, "error", err)
	}
}

// closeModal emits an out-of-band swap that empties the modal root alongside
// the grid response.
func (h *TemplateHandler) closeModal(w http.ResponseWriter) {
	h.renderTemplate(w, "modal-clear", nil)
}

// loadOwnedPage is the page-flow twin of the API ownership check: the modal
// endpoints only ever operate on the caller's own events.
func (h *TemplateHandler) loadOwnedPage(w http.ResponseWriter, r *http.Request) (*model.Event, bool) {
	eventID, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	event, err := h.events.GetByID(eventID)
	if err != nil {
		h.logger.Error("get event", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil, false
	}
	if event == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return nil, false
	}

	id, _ := auth.FromContext(r.Context())
	if event.User.Username != id.Username {
		http.Error(w, "not the event owner", http.StatusForbidden)
		return nil, false
	}

	return event, true
}

func parseEventForm(r *http.Request) (string, time.Time, bool) {
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		return "", time.Time{}, false
	}

	date, err := time.ParseInLocation(formDateLayout, r.FormValue("date"), time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	return title, date, true
}

func dayHeading(day time.Time, verb string) string {
	return fmt.Sprintf("%d년 %d월 %d일에 일정 %s", day.Year(), int(day.Month()), day.Day(), verb)
}
