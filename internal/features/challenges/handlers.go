// Package challenges — handlers.go обрабатывает HTTP-запросы челленджей.
package challenges

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wingman-challenges/internal/api/httpx"
	"serotonyl.ru/wingman-challenges/internal/common"
)

// Handler обрабатывает запросы к челленджам.
type Handler struct {
	service     *Service
	submitLimit mux.MiddlewareFunc
}

// NewHandler создаёт новый обработчик челленджей.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// WithSubmitLimit ограничивает частоту отправок прогресса middleware mw.
// Чтение состояния и журнала не ограничивается.
func (h *Handler) WithSubmitLimit(mw mux.MiddlewareFunc) *Handler {
	h.submitLimit = mw
	return h
}

// Register подключает маршруты к роутеру /api/v1.
func (h *Handler) Register(r *mux.Router) {
	var submit http.Handler = http.HandlerFunc(h.HandleSubmit)
	if h.submitLimit != nil {
		submit = h.submitLimit(submit)
	}

	r.HandleFunc("/challenges/today", h.HandleToday).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/challenges", h.HandleState).Methods(http.MethodGet)
	r.Handle("/users/{userID}/challenges/progress", submit).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/challenges/history", h.HandleHistory).Methods(http.MethodGet)
}

// submitRequest — тело POST /users/{userID}/challenges/progress.
type submitRequest struct {
	Entries []submitEntry `json:"entries" validate:"required,min=1,dive"`
}

// submitEntry — одна запись прогресса от клиента.
// completed читается как сырой JSON: допускаются только литералы true/false.
// date от клиента игнорируется, отправка всегда относится к сегодняшнему дню.
type submitEntry struct {
	ChallengeID string          `json:"challengeId" validate:"required"`
	Completed   json.RawMessage `json:"completed"`
	CompletedAt *time.Time      `json:"completedAt"`
	Progress    *int            `json:"progress" validate:"omitempty,min=0"`
	Target      *int            `json:"target" validate:"omitempty,min=0"`
	Date        string          `json:"date"`
}

// HandleToday — GET /challenges/today.
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	today, defs, err := h.service.TodayChallenges()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if defs == nil {
		defs = []ChallengeDefinition{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"date":       today,
		"challenges": defs,
	})
}

// HandleState — GET /users/{userID}/challenges.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetState(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

// HandleSubmit — POST /users/{userID}/challenges/progress.
//
// Ответ: {"progresses": [...], "streak": {...}, "newRewards": [...]}
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	entries := make([]SubmittedEntry, 0, len(req.Entries))
	for i, e := range req.Entries {
		completed, ok := strictBool(e.Completed)
		if !ok {
			httpx.WriteError(w, common.NewValidationError("entries["+strconv.Itoa(i)+"].completed", "ожидается true или false"))
			return
		}
		entries = append(entries, SubmittedEntry{
			ChallengeID: e.ChallengeID,
			Completed:   completed,
			CompletedAt: e.CompletedAt,
			Progress:    e.Progress,
			Target:      e.Target,
		})
	}

	result, err := h.service.SubmitDailyProgress(r.Context(), userID, entries)
	if err != nil {
		if !httpx.IsClientError(err) {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка отправки прогресса")
		}
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleHistory — GET /users/{userID}/challenges/history?from=&to=&limit=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			httpx.WriteError(w, common.NewValidationError("limit", "ожидается неотрицательное число"))
			return
		}
		limit = v
	}

	history, err := h.service.GetHistory(r.Context(), mux.Vars(r)["userID"], q.Get("from"), q.Get("to"), limit)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"history": history})
}

// strictBool разбирает JSON-литерал true/false. Отсутствие поля или null → nil, true
// (ошибку «обязательное поле» вернёт валидация записи). Любое другое значение → false.
func strictBool(raw json.RawMessage) (*bool, bool) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null":
		return nil, true
	case "true":
		v := true
		return &v, true
	case "false":
		v := false
		return &v, true
	}
	return nil, false
}
