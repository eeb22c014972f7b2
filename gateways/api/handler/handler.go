package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joeleesuh/delegate-ai/pkg/json"
	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
	"github.com/joeleesuh/delegate-ai/services/meeting/usecase"
)

type Handler struct {
	usecase       usecase.Usecase
	processSecret string
	log           *slog.Logger
}

func New(usc usecase.Usecase, processSecret string, log *slog.Logger) *Handler {
	log.Debug("creating new handler",
		slog.Bool("process_secret_set", processSecret != ""))
	return &Handler{
		usecase:       usc,
		processSecret: processSecret,
		log:           log,
	}
}

type CreateMeetingResponse struct {
	ID     string        `json:"id"`
	Status entity.Status `json:"status"`
}

type ListMeetingsResponse struct {
	Meetings []MeetingSummary `json:"meetings"`
}

type MeetingSummary struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"display_name"`
	Status      entity.Status `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	h.log.Debug("registering HTTP routes")
	r.Get("/health", h.HealthCheck)
	r.Post("/meetings", h.CreateMeeting)
	r.Get("/meetings", h.ListMeetings)
	r.Get("/meetings/{id}", h.GetMeeting)
	r.With(h.requireProcessToken).Post("/meetings/{id}/process", h.ProcessMeeting)
	r.Post("/transcribe", h.Transcribe)
	h.log.Info("all routes registered successfully")
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	json.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"service": "DelegateAI API",
	})
}

func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	h.log.Info("create meeting request received", slog.String("remote_addr", r.RemoteAddr))

	var req entity.CreateMeetingRequest
	if err := json.ParseJSON(r, &req); err != nil {
		h.log.Warn("invalid request body", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	m, err := h.usecase.CreateMeeting(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to create meeting", slog.String("error", err.Error()))
		json.WriteError(w, statusFor(err), err)
		return
	}
	h.log.Info("meeting created",
		slog.String("id", m.ID),
		slog.String("source_link", m.SourceLink))

	json.WriteJSON(w, http.StatusCreated, CreateMeetingResponse{
		ID:     m.ID,
		Status: m.Status,
	})
}

func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.usecase.GetMeeting(r.Context(), id)
	if err != nil {
		h.log.Warn("failed to get meeting",
			slog.String("id", id),
			slog.String("error", err.Error()))
		json.WriteError(w, statusFor(err), err)
		return
	}

	json.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.usecase.ListMeetings(r.Context())
	if err != nil {
		h.log.Error("failed to list meetings", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	summaries := make([]MeetingSummary, 0, len(meetings))
	for _, m := range meetings {
		summaries = append(summaries, MeetingSummary{
			ID:          m.ID,
			DisplayName: m.DisplayName,
			Status:      m.Status,
			CreatedAt:   m.CreatedAt,
		})
	}

	json.WriteJSON(w, http.StatusOK, ListMeetingsResponse{Meetings: summaries})
}

func (h *Handler) ProcessMeeting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.log.Info("process meeting request received", slog.String("id", id))

	m, err := h.usecase.ProcessMeeting(r.Context(), id)
	if err != nil {
		h.log.Error("processing failed",
			slog.String("id", id),
			slog.String("error", err.Error()))
		json.WriteError(w, statusFor(err), err)
		return
	}
	h.log.Info("processing finished",
		slog.String("id", id),
		slog.String("status", string(m.Status)))

	json.WriteJSON(w, http.StatusOK, m)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrSourceLinkMissing):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrAlreadyCompleted):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrAlreadyProcessing):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
