package middleware

import (
	"log"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/mock-interview/backend/pkg/utils"
)

// InternalErrorMessage 未预期错误的统一提示
const InternalErrorMessage = "Internal server error"

// Recoverer 捕获处理器中的panic并返回统一的JSON错误
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			log.Printf("[http] panic serving %s %s request_id=%s: %v", r.Method, r.URL.Path, chimw.GetReqID(r.Context()), rvr)
			chimw.PrintPrettyStack(rvr)

			// upgraded websocket connections have no response left to write
			if r.Header.Get("Upgrade") != "" {
				return
			}
			utils.RespondError(w, http.StatusInternalServerError, InternalErrorMessage)
		}()

		next.ServeHTTP(w, r)
	})
}
