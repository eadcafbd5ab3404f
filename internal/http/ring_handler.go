package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/alarmd/internal/alarm"
)

type ringService interface {
	RingingAlarm() (alarm.Alarm, bool)
	DismissRinging(ctx context.Context) (alarm.Alarm, error)
	SnoozeRinging(ctx context.Context) (alarm.Alarm, error)
	Reconcile(ctx context.Context) error
	ShowSystemAlarms(ctx context.Context) error
}

type RingHandler struct {
	service   ringService
	responder responder
	now       func() time.Time
	logger    *slog.Logger
}

func NewRingHandler(service ringService, now func() time.Time, logger *slog.Logger) *RingHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &RingHandler{service: service, responder: newResponder(base), now: now, logger: base}
}

func (h *RingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RingHandler", operation, attrs...)
}

// Status reports whether an alarm is currently sounding.
func (h *RingHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ringing, ok := h.service.RingingAlarm()
	resp := ringStatusResponse{Ringing: ok}
	if ok {
		dto := toAlarmDTO(ringing, h.now(), nil)
		resp.Alarm = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Dismiss silences the ringing alarm without scheduling anything.
func (h *RingHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Dismiss")
	dismissed, err := h.service.DismissRinging(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "dismiss failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("alarm_id", dismissed.ID).InfoContext(r.Context(), "alarm dismissed")
	dto := toAlarmDTO(dismissed, h.now(), nil)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ringActionResponse{Alarm: dto})
}

// Snooze silences the ringing alarm and schedules its short-delay return.
func (h *RingHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Snooze")
	snoozed, err := h.service.SnoozeRinging(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "snooze failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("alarm_id", snoozed.ID, "fire_at", snoozed.Time).InfoContext(r.Context(), "alarm snoozed")
	dto := toAlarmDTO(snoozed, h.now(), nil)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ringActionResponse{Alarm: dto})
}

// Reconcile rebuilds platform triggers from the persisted collection, the
// endpoint a returning frontend calls when it regains the foreground.
func (h *RingHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Reconcile")
	if err := h.service.Reconcile(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "reconciliation failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "triggers reconciled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ShowSystemAlarms opens the platform's own alarm UI.
func (h *RingHandler) ShowSystemAlarms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "ShowSystemAlarms")
	if err := h.service.ShowSystemAlarms(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "failed to open system alarm ui", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type ringStatusResponse struct {
	Ringing bool      `json:"ringing"`
	Alarm   *alarmDTO `json:"alarm,omitempty"`
}

type ringActionResponse struct {
	Alarm alarmDTO `json:"alarm"`
}
