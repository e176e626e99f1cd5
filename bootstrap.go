package users

import (
	"context"
	"time"
)

// BootstrapConfig gates and parameterizes default admin provisioning.
type BootstrapConfig interface {
	GetProvisionAdmin() bool
	GetAdminLogin() string
	GetAdminSecret() string
}

const (
	defaultAdminName   = "Admin"
	defaultAdminGender = 1
)

// defaultAdminBirthday matches the seed record of the deployments this API
// replaces, so migrated installs end up with an identical admin row.
var defaultAdminBirthday = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// EnsureDefaultAdmin provisions an admin account when none exists. Idempotent
// and config gated; meant to run once at process start so a fresh install is
// never locked out. The configured secret goes through the comparer so the
// stored form matches whatever scheme the deployment uses.
func EnsureDefaultAdmin(ctx context.Context, store AccountStore, comparer SecretComparer, cfg BootstrapConfig, logger Logger) (*User, error) {
	if logger == nil {
		logger = defLogger{}
	}

	if !cfg.GetProvisionAdmin() {
		logger.Debug("default admin provisioning disabled")
		return nil, nil
	}

	hasAdmin, err := store.HasAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if hasAdmin {
		return nil, nil
	}

	if comparer == nil {
		comparer = PlainTextComparer{}
	}

	secret, err := comparer.Hash(cfg.GetAdminSecret())
	if err != nil {
		return nil, storeFailure(err, "hash bootstrap admin secret")
	}

	birthday := defaultAdminBirthday
	record := &User{
		Login:     cfg.GetAdminLogin(),
		Secret:    secret,
		Name:      defaultAdminName,
		Gender:    defaultAdminGender,
		Birthday:  &birthday,
		Admin:     true,
		CreatedBy: SystemActor,
	}

	created, err := store.CreateUser(ctx, record)
	if err != nil {
		// another instance may have won the race; that admin serves as well
		if isConflictError(err) {
			logger.Info("default admin already provisioned elsewhere")
			return nil, nil
		}
		return nil, err
	}

	logger.Info("default admin provisioned: login=%s", created.Login)

	return created, nil
}
