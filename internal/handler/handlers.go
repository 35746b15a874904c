package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/service"
	"github.com/ezpotd/intbeetrainer/internal/storage"
	"github.com/ezpotd/intbeetrainer/internal/ws"
	"go.uber.org/zap"
)

type verifyReq struct {
	ProblemID int64  `json:"problemId"`
	Input     string `json:"input"`
}

func RegisterHandlers(mux *http.ServeMux, svc service.BattleService, catalog service.CatalogService, hub *ws.Hub, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			log.Warn("method not allowed", zap.String("path", r.URL.Path), zap.String("method", r.Method))
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		code := strings.TrimPrefix(r.URL.Path, "/rooms/")
		room, ok := svc.GetRoom(code)
		if !ok {
			log.Warn("room not found", zap.String("code", code))
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		log.Info("room fetched", zap.String("code", room.Code))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     room.Code,
			"status": room.Status(),
		})
	})

	mux.HandleFunc("/problems", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			log.Warn("method not allowed", zap.String("path", r.URL.Path), zap.String("method", r.Method))
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var difficulty *int
		if raw := r.URL.Query().Get("difficulty"); raw != "" && raw != "all" {
			d, err := strconv.Atoi(raw)
			if err != nil || d < 0 || d > 5 {
				log.Warn("bad difficulty filter", zap.String("difficulty", raw))
				http.Error(w, "bad difficulty", http.StatusBadRequest)
				return
			}
			difficulty = &d
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		problems, err := catalog.ListProblems(ctx, difficulty)
		if err != nil {
			log.Error("list problems failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info("problems listed", zap.Int("count", len(problems)))
		_ = json.NewEncoder(w).Encode(problems)
	})

	mux.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			log.Warn("method not allowed", zap.String("path", r.URL.Path), zap.String("method", r.Method))
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req verifyReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("verify bad json", zap.Error(err))
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		correct, err := catalog.Verify(ctx, req.ProblemID, req.Input)
		switch {
		case errors.Is(err, service.ErrIllegalInput):
			log.Warn("verify illegal input", zap.Int64("problem_id", req.ProblemID))
			http.Error(w, "Illegal Command", http.StatusBadRequest)
			return
		case errors.Is(err, storage.ErrProblemNotFound):
			log.Warn("verify unknown problem", zap.Int64("problem_id", req.ProblemID))
			http.Error(w, "problem not found", http.StatusNotFound)
			return
		case err != nil:
			log.Error("verify failed", zap.Int64("problem_id", req.ProblemID), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info("answer verified", zap.Int64("problem_id", req.ProblemID), zap.Bool("correct", correct))
		_ = json.NewEncoder(w).Encode(map[string]bool{"isCorrect": correct})
	})

	mux.HandleFunc("/progress", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			log.Warn("method not allowed", zap.String("path", r.URL.Path), zap.String("method", r.Method))
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			http.Error(w, "email required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		progress, err := catalog.ProgressFor(ctx, email)
		if err != nil {
			log.Error("progress fetch failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		_ = json.NewEncoder(w).Encode(progress)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		log.Info("ws connect attempt", zap.String("remote", r.RemoteAddr))
		hub.ServeWS(w, r)
	})
}
