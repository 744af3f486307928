package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/metrics"
	"github.com/beautyhome/studio-api/internal/storage"
)

// Bootstrap identity accepted until the operator stores their own admin
// credentials in the settings section.
const (
	BootstrapUsername = "susan"
	BootstrapPassword = "ChristisKing8"
)

// MinPasswordLength is the shortest password recovery accepts.
const MinPasswordLength = 6

// dummyHash is compared against on a username mismatch.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("studio-login-placeholder"), bcrypt.DefaultCost)

var (
	// ErrInvalidCredentials is returned for any login mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRecoveryNotConfigured is returned when no recovery key hash is stored.
	ErrRecoveryNotConfigured = errors.New("recovery is not configured")

	// ErrInvalidRecoveryKey is returned when the recovery key does not match.
	ErrInvalidRecoveryKey = errors.New("invalid recovery key")

	// ErrWeakPassword is returned when the new password is too short.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

	// ErrUnauthorized is returned when a request carries no valid credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// SettingsStore reads and replaces the settings section. storage.Facade implements it.
type SettingsStore interface {
	StoredDocument(ctx context.Context, section content.Section) (content.Document, error)
	PutDocument(ctx context.Context, name string, raw []byte) (content.Document, error)
}

// Authenticator checks admin passwords against the settings section.
type Authenticator struct {
	settings   SettingsStore
	sessions   *SessionManager
	logger     *slog.Logger
	bcryptCost int
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(settings SettingsStore, sessions *SessionManager, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		settings:   settings,
		sessions:   sessions,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Login verifies username and password and issues a session token.
// Every mismatch yields ErrInvalidCredentials, as does a settings read
// failure other than not-found.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	admin, bootstrap, err := a.admin(ctx)
	if err != nil {
		a.logger.Warn("settings unavailable, refusing login", "error", err)
		metrics.RecordAuthFailure("settings_unavailable")
		return "", time.Time{}, ErrInvalidCredentials
	}

	if !strings.EqualFold(strings.TrimSpace(username), strings.TrimSpace(admin.Username)) {
		// Same bcrypt cost as a real comparison so timing does not reveal the username.
		//nolint:errcheck
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.RecordAuthFailure("invalid_credentials")
		return "", time.Time{}, ErrInvalidCredentials
	}

	var ok bool
	if bootstrap {
		ok = subtle.ConstantTimeCompare([]byte(password), []byte(BootstrapPassword)) == 1
	} else {
		ok = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil
	}
	if !ok {
		metrics.RecordAuthFailure("invalid_credentials")
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expires, err := a.sessions.Issue(admin.Username)
	if err != nil {
		return "", time.Time{}, err
	}
	a.logger.Info("admin logged in", "username", admin.Username, "bootstrap", bootstrap)
	return token, expires, nil
}

// admin returns the configured admin, or the bootstrap identity when no
// settings are stored or they lack a username or password hash.
func (a *Authenticator) admin(ctx context.Context) (content.AdminSettings, bool, error) {
	doc, err := a.settings.StoredDocument(ctx, content.Settings)
	if err != nil {
		if !storage.IsNotFound(err) && !errors.Is(err, storage.ErrStorageUnavailable) {
			return content.AdminSettings{}, false, err
		}
		return content.AdminSettings{Username: BootstrapUsername}, true, nil
	}
	admin := content.ReadAdmin(doc)
	if strings.TrimSpace(admin.Username) == "" || admin.PasswordHash == "" {
		return content.AdminSettings{Username: BootstrapUsername}, true, nil
	}
	return admin, false, nil
}

// Recover replaces the admin password when recoveryKey matches the stored
// recovery key hash. The legacy plaintext password is cleared.
func (a *Authenticator) Recover(ctx context.Context, recoveryKey, newPassword string) error {
	if recoveryKey == "" || len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	doc, err := a.settings.StoredDocument(ctx, content.Settings)
	if err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	admin := content.ReadAdmin(doc)
	if admin.RecoveryKeyHash == "" {
		return ErrRecoveryNotConfigured
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.RecoveryKeyHash), []byte(recoveryKey)) != nil {
		metrics.RecordAuthFailure("invalid_recovery_key")
		return ErrInvalidRecoveryKey
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	next, err := content.WithAdminPassword(doc, string(hash))
	if err != nil {
		return err
	}
	if _, err := a.settings.PutDocument(ctx, string(content.Settings), next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	a.logger.Info("admin password reset via recovery key", "username", admin.Username)
	return nil
}
