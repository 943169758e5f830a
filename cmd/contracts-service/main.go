package main

import (
	"fmt"
	"os"

	"github.com/textilia/contracts-service/internal/auth"
	"github.com/textilia/contracts-service/internal/config"
	"github.com/textilia/contracts-service/internal/db"
	"github.com/textilia/contracts-service/internal/excel"
	httphandler "github.com/textilia/contracts-service/internal/http"
	"github.com/textilia/contracts-service/internal/http/middleware"
	"github.com/textilia/contracts-service/internal/logger"
	"github.com/textilia/contracts-service/internal/pdf"
	"github.com/textilia/contracts-service/internal/repository"
	"github.com/textilia/contracts-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	proposalRepo := repository.NewProposalRepository(database)

	contractService := service.NewContractService(
		contractRepo,
		proposalRepo,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		cfg,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
