package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/alarmd/internal/alarm"
	"github.com/example/alarmd/internal/store"
	"github.com/example/alarmd/internal/trigger"
)

// warnCancelUnsupported is attached to responses whose alarm left the engine
// but still lives on as a native system alarm.
const warnCancelUnsupported = "the native system alarm cannot be removed here; open the platform's alarm app"

type alarmService interface {
	ListAlarms(ctx context.Context) ([]alarm.Alarm, error)
	GetAlarm(ctx context.Context, id string) (alarm.Alarm, error)
	CreateAlarm(ctx context.Context, params store.CreateParams) (alarm.Alarm, error)
	UpdateAlarm(ctx context.Context, id string, params store.UpdateParams) (alarm.Alarm, error)
	ToggleAlarm(ctx context.Context, id string) (alarm.Alarm, error)
	DeleteAlarm(ctx context.Context, id string) error
	Triggers() map[string]trigger.Handle
}

type AlarmHandler struct {
	service   alarmService
	responder responder
	now       func() time.Time
	logger    *slog.Logger
}

func NewAlarmHandler(service alarmService, now func() time.Time, logger *slog.Logger) *AlarmHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &AlarmHandler{service: service, responder: newResponder(base), now: now, logger: base}
}

func (h *AlarmHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AlarmHandler", operation, attrs...)
}

func (h *AlarmHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	alarms, err := h.service.ListAlarms(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm list failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(alarms)).InfoContext(r.Context(), "alarms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAlarmsResponse{
		Alarms: toAlarmDTOs(alarms, h.now(), h.service.Triggers()),
	})
}

func (h *AlarmHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode alarm request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	created, err := h.service.CreateAlarm(r.Context(), store.CreateParams{
		Hour:    req.Hour,
		Minute:  req.Minute,
		Label:   strings.TrimSpace(req.Label),
		Days:    toWeekdays(req.Days),
		Enabled: req.Enabled,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm creation failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("alarm_id", created.ID).InfoContext(r.Context(), "alarm created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, alarmResponse{
		Alarm: h.toDTO(created),
	})
}

func (h *AlarmHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing alarm id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	a, err := h.service.GetAlarm(r.Context(), alarmID)
	if err != nil {
		h.log(r.Context(), "Get", "alarm_id", alarmID).ErrorContext(r.Context(), "alarm lookup failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Alarm: h.toDTO(a)})
}

func (h *AlarmHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing alarm id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "alarm_id", alarmID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode alarm update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "alarm_id", alarmID)

	updated, err := h.service.UpdateAlarm(r.Context(), alarmID, store.UpdateParams{
		Hour:    req.Hour,
		Minute:  req.Minute,
		Label:   strings.TrimSpace(req.Label),
		Days:    toWeekdays(req.Days),
		Enabled: req.Enabled,
	})
	if h.respondWithWarning(w, r, logger, updated, err, "alarm updated") {
		return
	}

	logger.InfoContext(r.Context(), "alarm updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Alarm: h.toDTO(updated)})
}

func (h *AlarmHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.log(r.Context(), "Toggle", "error_kind", "bad_request").ErrorContext(r.Context(), "missing alarm id for toggle")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	logger := h.log(r.Context(), "Toggle", "alarm_id", alarmID)

	toggled, err := h.service.ToggleAlarm(r.Context(), alarmID)
	if h.respondWithWarning(w, r, logger, toggled, err, "alarm toggled") {
		return
	}

	logger.With("enabled", toggled.Enabled).InfoContext(r.Context(), "alarm toggled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Alarm: h.toDTO(toggled)})
}

func (h *AlarmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing alarm id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	logger := h.log(r.Context(), "Delete", "alarm_id", alarmID)
	err := h.service.DeleteAlarm(r.Context(), alarmID)
	if errors.Is(err, trigger.ErrCancelUnsupported) {
		logger.WarnContext(r.Context(), "alarm deleted, native system alarm remains")
		h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Warning: warnCancelUnsupported})
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm delete failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "alarm deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AlarmHandler) Triggers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	handles := h.service.Triggers()
	out := make(map[string]string, len(handles))
	for id, handle := range handles {
		out[id] = handle.Kind.String()
	}

	h.log(r.Context(), "Triggers").With("result_count", len(out)).InfoContext(r.Context(), "triggers listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, triggersResponse{Triggers: out})
}

// respondWithWarning handles the shared tail of mutations that may succeed
// while signalling an uncancellable native trigger. It reports whether it
// already wrote a response.
func (h *AlarmHandler) respondWithWarning(w http.ResponseWriter, r *http.Request, logger *slog.Logger, a alarm.Alarm, err error, message string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, trigger.ErrCancelUnsupported) {
		logger.WarnContext(r.Context(), message+", native system alarm remains")
		h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{
			Alarm:   h.toDTO(a),
			Warning: warnCancelUnsupported,
		})
		return true
	}

	logger.ErrorContext(r.Context(), "alarm mutation failed", "error", err)
	h.responder.handleServiceError(r.Context(), w, err)
	return true
}

func (h *AlarmHandler) toDTO(a alarm.Alarm) alarmDTO {
	return toAlarmDTO(a, h.now(), h.service.Triggers())
}

type alarmRequest struct {
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Label   string `json:"label"`
	Days    []int  `json:"days"`
	Enabled bool   `json:"enabled"`
}

func toWeekdays(days []int) []time.Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]time.Weekday, 0, len(days))
	for _, day := range days {
		out = append(out, time.Weekday(day))
	}
	return out
}

type alarmResponse struct {
	Alarm   alarmDTO `json:"alarm"`
	Warning string   `json:"warning,omitempty"`
}

type listAlarmsResponse struct {
	Alarms []alarmDTO `json:"alarms"`
}

type triggersResponse struct {
	Triggers map[string]string `json:"triggers"`
}

type alarmDTO struct {
	ID          string  `json:"id"`
	Hour        int     `json:"hour"`
	Minute      int     `json:"minute"`
	Label       string  `json:"label"`
	Days        []int   `json:"days"`
	Enabled     bool    `json:"enabled"`
	DisplayTime string  `json:"display_time"`
	Repeat      string  `json:"repeat"`
	NextFireAt  *string `json:"next_fire_at,omitempty"`
	Trigger     string  `json:"trigger,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toAlarmDTO(a alarm.Alarm, now time.Time, handles map[string]trigger.Handle) alarmDTO {
	days := make([]int, 0, len(a.Days))
	for _, day := range a.Days {
		days = append(days, int(day))
	}

	dto := alarmDTO{
		ID:          a.ID,
		Hour:        a.Time.Hour(),
		Minute:      a.Time.Minute(),
		Label:       a.Label,
		Days:        days,
		Enabled:     a.Enabled,
		DisplayTime: alarm.FormatTime(a.Time),
		Repeat:      alarm.FormatWeekdays(a.Days),
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	if fireAt, ok := alarm.NextFireTime(a, now); ok {
		formatted := fireAt.UTC().Format(time.RFC3339Nano)
		dto.NextFireAt = &formatted
	}
	if handle, ok := handles[a.ID]; ok {
		dto.Trigger = handle.Kind.String()
	}
	return dto
}

func toAlarmDTOs(alarms []alarm.Alarm, now time.Time, handles map[string]trigger.Handle) []alarmDTO {
	if len(alarms) == 0 {
		return nil
	}
	out := make([]alarmDTO, 0, len(alarms))
	for _, a := range alarms {
		out = append(out, toAlarmDTO(a, now, handles))
	}
	return out
}
