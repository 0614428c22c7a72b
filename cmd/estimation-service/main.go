package main

import (
	"fmt"
	"os"

	"github.com/nurpe/estimation-engine/internal/auth"
	"github.com/nurpe/estimation-engine/internal/config"
	"github.com/nurpe/estimation-engine/internal/db"
	"github.com/nurpe/estimation-engine/internal/excel"
	httphandler "github.com/nurpe/estimation-engine/internal/http"
	"github.com/nurpe/estimation-engine/internal/http/middleware"
	"github.com/nurpe/estimation-engine/internal/logger"
	"github.com/nurpe/estimation-engine/internal/pdf"
	"github.com/nurpe/estimation-engine/internal/repository"
	"github.com/nurpe/estimation-engine/internal/service"
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

	defaults, err := cfg.EngineDefaults()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid engine settings")
	}

	store := repository.New(database)

	services := httphandler.Services{
		Projects:     service.NewProjectService(store, defaults),
		Versions:     service.NewVersionService(store),
		Team:         service.NewTeamService(store),
		Features:     service.NewFeatureService(store, defaults),
		Plans:        service.NewSprintPlanService(store, defaults),
		Calculations: service.NewCalculationService(store, defaults),
		Rates:        service.NewRateService(store),
		Drafts:       service.NewDraftService(store),
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(services, excel.NewGenerator(defaults), pdf.NewGenerator(defaults), log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting estimation service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
