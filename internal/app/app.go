package app

import (
	"context"
	"net/http"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/game"
	"github.com/ezpotd/intbeetrainer/internal/handler"
	"github.com/ezpotd/intbeetrainer/internal/logger"
	"github.com/ezpotd/intbeetrainer/internal/service"
	"github.com/ezpotd/intbeetrainer/internal/storage"
	"github.com/ezpotd/intbeetrainer/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type App struct {
	cfg Config
	log *zap.Logger
	db  *pgxpool.Pool
	srv *http.Server
}

func New(cfg Config) (*App, error) {
	l, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = l.Sync()
		return nil, err
	}

	problems := storage.NewPostgresProblemStore(db)
	progress := storage.NewPostgresProgressStore(db)
	registry := game.NewRegistry()

	battleSvc := service.NewBattleService(registry, problems, progress, l, service.Config{
		IntermissionPause: cfg.IntermissionPause,
		FetchTimeout:      cfg.FetchTimeout,
		PersistTimeout:    cfg.PersistTimeout,
	})
	catalogSvc := service.NewCatalogService(problems, progress)

	hub := ws.NewHub(battleSvc, l)

	mux := http.NewServeMux()
	handler.RegisterHandlers(mux, battleSvc, catalogSvc, hub, l)
	handler.RegisterAdminHandlers(mux, catalogSvc, cfg.AdminToken, l)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	return &App{cfg: cfg, log: l, db: db, srv: srv}, nil
}

func (a *App) Run() error {
	a.log.Info("server started",
		zap.String("addr", a.cfg.HTTPAddr),
		zap.String("log_level", a.cfg.LogLevel),
	)
	return a.srv.ListenAndServe()
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
