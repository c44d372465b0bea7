package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yewon-dev/gongjucal/internal/auth"
	"github.com/yewon-dev/gongjucal/internal/model"
	"github.com/yewon-dev/gongjucal/internal/store"
	"github.com/yewon-dev/gongjucal/internal/websocket"
)

type EventHandler struct {
	events *store.EventStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewEventHandler(es *store.EventStore, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: es, hub: hub, logger: logger}
}

type eventRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

func (h *EventHandler) parseAndValidate(r *http.Request, w http.ResponseWriter) (string, time.Time, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return "", time.Time{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return "", time.Time{}, false
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be ISO-8601 format"})
		return "", time.Time{}, false
	}

	return req.Title, date, true
}

// Create handles POST /events. The owner is always the token's identity.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	title, date, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	id, _ := auth.FromContext(r.Context())
	event, err := h.events.Create(title, date, id.UserID)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create event"})
		return
	}

	h.hub.NotifyEventChange("created", event.ID)
	writeJSON(w, http.StatusCreated, event)
}

// List handles GET /events: every event of every user, oldest first.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List()
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// Update handles PUT /events/{id}. Only the owner may change an event.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	title, date, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	event, err := h.events.Update(existing.ID, title, date)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update event"})
		return
	}

	h.hub.NotifyEventChange("updated", event.ID)
	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /events/{id}. Only the owner may delete an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(existing.ID); err != nil {
		h.logger.Error("delete event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete event"})
		return
	}

	h.hub.NotifyEventChange("deleted", existing.ID)
	w.WriteHeader(http.StatusNoContent)
}

// loadOwned resolves {id}, returning the event only when it exists and is
// owned by the caller. Hiding edit buttons in the UI is not enough; the
// ownership rule is enforced here regardless of what the client shows.
func (h *EventHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*model.Event, bool) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	event, err := h.events.GetByID(eventID)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return nil, false
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return nil, false
	}

	id, _ := auth.FromContext(r.Context())
	if event.User.Username != id.Username {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "not the event owner"})
		return nil, false
	}

	return event, true
}
