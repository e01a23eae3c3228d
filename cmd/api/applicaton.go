package main

import (
	"log/slog"

	"reviewhub/proj/internal/api/tasks"
	"reviewhub/proj/internal/config"
	"reviewhub/proj/internal/services"
	"reviewhub/proj/internal/storage/postgres"

	validatorlib "reviewhub/proj/internal/lib/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type Application struct {
	cfg          *config.Config
	log          *slog.Logger
	Http         *Http
	Services     *services.Services
	validator    *govalidator.Validate
	queryDecoder *schema.Decoder
	bgTasks      *tasks.BackgroundTasks
}

func NewApplication(cfg *config.Config, log *slog.Logger, storage *postgres.Storage) *Application {
	bgTasks := tasks.New(log, cfg.Tasks.MaxWorkers, cfg.Tasks.MaxQueueSize)
	validator := govalidator.New(govalidator.WithRequiredStructEnabled())
	for tag, fn := range map[string]govalidator.Func{
		"username":         validatorlib.ValidateUsername,
		"slug":             validatorlib.ValidateSlug,
		"sortbytitlefield": validatorlib.ValidateSortByTitleField,
	} {
		if err := validator.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	queryDecoder := schema.NewDecoder()
	queryDecoder.IgnoreUnknownKeys(true)
	app := &Application{
		cfg:          cfg,
		log:          log,
		validator:    validator,
		queryDecoder: queryDecoder,
		Services:     services.New(log, cfg, storage, bgTasks),
		bgTasks:      bgTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
	return app
}
