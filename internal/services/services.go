package services

import (
	"log/slog"

	"reviewhub/proj/internal/config"
	"reviewhub/proj/internal/mails"
	"reviewhub/proj/internal/services/auth"
	"reviewhub/proj/internal/services/catalog"
	"reviewhub/proj/internal/services/reviews"
	"reviewhub/proj/internal/services/users"
	"reviewhub/proj/internal/storage/postgres"
	pgmodels "reviewhub/proj/internal/storage/postgres/models"
)

const tokenURL = "POST '/api/v1/auth/token'"

type Services struct {
	Auth    *auth.AuthService
	Users   *users.UserService
	Catalog *catalog.CatalogService
	Reviews *reviews.ReviewService
}

func New(log *slog.Logger, cfg *config.Config, storage *postgres.Storage, taskExecutor auth.TaskExecutor) *Services {
	mailer := mails.New(
		cfg.SMTPServer.Host,
		cfg.SMTPServer.Port,
		cfg.SMTPServer.Timeout,
		cfg.SMTPServer.Username,
		cfg.SMTPServer.Password,
		cfg.SMTPServer.Sender,
		cfg.SMTPServer.RetriesCount,
	)
	m := pgmodels.New(storage)
	return &Services{
		Auth: auth.New(
			log,
			m.Users,
			mailer,
			taskExecutor,
			cfg.AppSecret,
			cfg.Auth.TokenTTL,
			cfg.Auth.CodeTTL,
			tokenURL,
		),
		Users:   users.New(log, m.Users),
		Catalog: catalog.New(log, m.Categories, m.Genres, m.Titles),
		Reviews: reviews.New(log, m.Reviews, m.Comments),
	}
}
