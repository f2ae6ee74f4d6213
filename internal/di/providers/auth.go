package providers

import (
	"github.com/samber/do/v2"

	"github.com/hitorimeshi/hitori-server/internal/auth"
	"github.com/hitorimeshi/hitori-server/internal/config"
	"github.com/hitorimeshi/hitori-server/internal/logger"
)

// devPIN unlocks editing on development setups that never set ADMIN_PIN.
const devPIN = "0000"

// AuthKey wraps the token signing key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the token signing key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Auth.TokenKey = key

	log.Info("Authentication key loaded",
		"edit_token_duration", cfg.Auth.EditTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.EditTokenDuration)
}

// ProvideGate provides the PIN gate that guards catalog edits.
func ProvideGate(i do.Injector) (*auth.Gate, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	tokens := do.MustInvoke[*auth.TokenService](i)

	pin := cfg.Auth.AdminPIN
	if pin == "" {
		log.Warn("ADMIN_PIN is not set, using the development PIN",
			"environment", cfg.App.Environment,
		)
		pin = devPIN
	}

	return auth.NewGate(pin, cfg.Auth.AttemptsPerMinute, tokens, log.WithComponent("auth").Logger)
}
