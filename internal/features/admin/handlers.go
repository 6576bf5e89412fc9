// Package admin — handlers.go обрабатывает админ-эндпоинты.
// Каждый запрос должен нести заголовок X-Admin-Token.
package admin

import (
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"serotonyl.ru/wingman-challenges/internal/api/httpx"
)

// TokenHeader — заголовок с админ-токеном.
const TokenHeader = "X-Admin-Token"

// Handler обрабатывает админ-запросы.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик админки.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register подключает маршруты к роутеру /api/v1.
func (h *Handler) Register(r *mux.Router) {
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(h.requireToken)
	admin.HandleFunc("/users/{userID}", h.HandleProvision).Methods(http.MethodPut)
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		source, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			source = r.RemoteAddr
		}
		if err := h.service.VerifyToken(source, r.Header.Get(TokenHeader)); err != nil {
			httpx.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleProvision — PUT /admin/users/{userID}: создаёт пустое состояние челленджей.
func (h *Handler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ProvisionUser(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"userId":    state.UserID,
		"createdAt": state.CreatedAt,
	})
}
