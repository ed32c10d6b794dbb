package core

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const bootstrapLogin = "admin"

// BootstrapAdmin creates an initial staff login when the users table is empty.
// It is idempotent: once any user exists, it does nothing.
func BootstrapAdmin(ctx context.Context, repo UserRepository, cfg Config, logger *zap.Logger) error {
	if !cfg.BootstrapAdminEnabled {
		return nil
	}

	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	password, err := generatePassword(24)
	if err != nil {
		return errors.Wrap(err, "generate password")
	}
	digest, err := PasswordDigest(cfg.PasswordScheme, password)
	if err != nil {
		return err
	}
	if _, err := repo.Upsert(ctx, bootstrapLogin, digest); err != nil {
		return err
	}

	if cfg.InitialAdminPasswordPath != "" {
		if err := os.WriteFile(cfg.InitialAdminPasswordPath, []byte(password+"\n"), 0o600); err != nil {
			return errors.Wrap(err, "write initial password")
		}
		logger.Info("initial staff user created", zap.String("login", bootstrapLogin), zap.String("password_file", cfg.InitialAdminPasswordPath))
	} else {
		logger.Info("initial staff user created", zap.String("login", bootstrapLogin), zap.String("password", password))
	}

	return nil
}
