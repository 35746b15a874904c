package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/service"
	"github.com/ezpotd/intbeetrainer/internal/storage"
	"go.uber.org/zap"
)

func RegisterAdminHandlers(mux *http.ServeMux, catalog service.CatalogService, adminToken string, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	mux.HandleFunc("/admin/problems", requireAdminToken(adminToken, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var in storage.CreateProblemInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				log.Warn("admin create problem bad json", zap.Error(err))
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			row, err := catalog.CreateProblem(ctx, in)
			if err != nil {
				log.Warn("admin create problem failed", zap.Error(err))
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			log.Info("problem created", zap.Int64("id", row.ID), zap.Int("difficulty", row.Difficulty))
			_ = json.NewEncoder(w).Encode(row)

		case http.MethodGet:
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			rows, err := catalog.ListProblemRows(ctx)
			if err != nil {
				log.Error("admin list problems failed", zap.Error(err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			log.Info("problems listed for admin", zap.Int("count", len(rows)))
			_ = json.NewEncoder(w).Encode(rows)

		default:
			log.Warn("method not allowed", zap.String("path", r.URL.Path), zap.String("method", r.Method))
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
}
