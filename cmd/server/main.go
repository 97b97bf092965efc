package main

import (
	"log"

	_ "todo/docs"
	"todo/internal/config"
	"todo/internal/logger"
	"todo/internal/server"
)

// @title           Todo API
// @version         1.0
// @description     Minimal task tracker: JSON API plus server-rendered views.

// @host      localhost:5000
// @BasePath  /

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	l := logger.New(cfg.Env)

	s, err := server.Init(cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("server initialization failed")
	}

	if err := s.Run(); err != nil {
		l.Fatal().Err(err).Msg("server stopped with error")
	}
}
