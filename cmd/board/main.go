package main

import (
	"context"

	"dealflow_backend/internal/board"
	"dealflow_backend/internal/board/tui"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/db"
	"dealflow_backend/platform/logger"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	controller := board.New(repository.New(pool), log)
	if err := controller.Load(ctx); err != nil {
		log.Error("failed to load board", "error", err)
		panic("failed to load board: " + err.Error())
	}

	program := tea.NewProgram(tui.New(controller), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error("board exited with error", "error", err)
		panic("board exited with error: " + err.Error())
	}
}
