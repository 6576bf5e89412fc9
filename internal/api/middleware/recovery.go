package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wingman-challenges/internal/api/httpx"
)

// Recover перехватывает панику в обработчике и отвечает 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(log.Fields{
					"component": "panic_recovery",
					"panic":     fmt.Sprintf("%v", rec),
					"path":      r.URL.Path,
					"stack":     string(debug.Stack()),
				}).Error("ПАНИКА в обработчике — восстановлено")
				httpx.WriteJSON(w, http.StatusInternalServerError, httpx.ErrorResponse{
					Error:   "internal_error",
					Message: "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
