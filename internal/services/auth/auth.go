package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func())
}

type UsersStorage interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetConfirmationCode(ctx context.Context, userID int64, codeHash []byte, issuedAt time.Time) error
	Activate(ctx context.Context, userID int64) error
}

type AuthService struct {
	log          *slog.Logger
	storage      UsersStorage
	mailer       MailProvider
	taskExecutor TaskExecutor
	secret       []byte
	tokenTTL     time.Duration
	codeTTL      time.Duration
	tokenURL     string
}

func New(
	log *slog.Logger,
	storage UsersStorage,
	mailer MailProvider,
	taskExecutor TaskExecutor,
	secret string,
	tokenTTL time.Duration,
	codeTTL time.Duration,
	tokenURL string,
) *AuthService {
	return &AuthService{
		log:          log,
		storage:      storage,
		mailer:       mailer,
		taskExecutor: taskExecutor,
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		codeTTL:      codeTTL,
		tokenURL:     tokenURL,
	}
}

// Signup registers an inactive user and issues a confirmation code. Calling
// it again with the exact same (username, email) pair is not an error: a
// fresh code is issued for the existing row, invalidating the previous one.
// A username or email that is already taken by a different pair fails with
// ErrIdentityConflict.
func (a *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	const op = "auth.AuthService.Signup"
	log := a.log.With("op", op, "username", username)

	user, err := a.storage.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != email {
			return nil, ErrIdentityConflict
		}
	case errors.Is(err, storage.ErrNotFound):
		if _, err := a.storage.GetByEmail(ctx, email); err == nil {
			return nil, ErrIdentityConflict
		} else if !errors.Is(err, storage.ErrNotFound) {
			log.Error(err.Error())
			return nil, err
		}
		user, err = a.storage.Insert(ctx, &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		})
		if err != nil {
			// a concurrent signup can still win the unique constraint
			if errors.Is(err, storage.ErrConflict) {
				return nil, ErrIdentityConflict
			}
			log.Error(err.Error())
			return nil, err
		}
	default:
		log.Error(err.Error())
		return nil, err
	}

	code := uuid.NewString()
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := a.storage.SetConfirmationCode(ctx, user.ID, codeHash, time.Now()); err != nil {
		log.Error(err.Error())
		return nil, err
	}
	a.taskExecutor.Add(func() {
		a.sendConfirmationEmail(user.Email, user.Username, code)
	})
	return user, nil
}

func (a *AuthService) sendConfirmationEmail(email, username, code string) {
	a.log.Info("sending confirmation code email", "username", username)
	err := a.mailer.Send(
		email,
		"confirmation_code.html",
		map[string]any{
			"username":         username,
			"confirmationCode": code,
			"tokenURL":         a.tokenURL,
			"ttl":              a.codeTTL.String(),
		})
	if err != nil {
		a.log.Error("Error sending confirmation code email", "errMsg", err.Error())
	}
}

// Token exchanges a confirmation code for a bearer credential. The code is
// single-use: a successful exchange activates the user and clears the
// stored hash.
func (a *AuthService) Token(ctx context.Context, username, code string) (string, error) {
	const op = "auth.AuthService.Token"
	log := a.log.With("op", op, "username", username)

	user, err := a.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return "", ErrUserNotFound
		}
		log.Error(err.Error())
		return "", err
	}
	if user.CodeHash == nil || user.CodeIssuedAt == nil {
		log.Info("no active confirmation code")
		return "", ErrInvalidCode
	}
	if time.Since(*user.CodeIssuedAt) > a.codeTTL {
		log.Info("confirmation code expired")
		return "", ErrInvalidCode
	}
	if bcrypt.CompareHashAndPassword(user.CodeHash, []byte(code)) != nil {
		log.Info("confirmation code mismatch")
		return "", ErrInvalidCode
	}
	if err := a.storage.Activate(ctx, user.ID); err != nil {
		log.Error(err.Error())
		return "", err
	}
	return a.issueToken(user)
}

func (a *AuthService) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"uid": user.ID,
		"exp": time.Now().Add(a.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// UserFromToken verifies the bearer credential and resolves the active user
// it identifies. Used by the Authenticate middleware.
func (a *AuthService) UserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	user, err := a.storage.GetByID(ctx, int64(uid))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}
