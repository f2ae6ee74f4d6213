package providers

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/hitorimeshi/hitori-server/internal/config"
	"github.com/hitorimeshi/hitori-server/internal/exchange"
	"github.com/hitorimeshi/hitori-server/internal/logger"
)

// ProvideExchangeRates provides the cached JPY to THB rate lookup.
func ProvideExchangeRates(i do.Injector) (*exchange.HTTPProvider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	provider := exchange.NewHTTPProvider(exchange.Config{
		Client:   &http.Client{Timeout: cfg.Exchange.Timeout},
		BaseURL:  cfg.Exchange.BaseURL,
		TTL:      cfg.Exchange.TTL,
		Fallback: cfg.Exchange.Fallback,
	}, log.WithComponent("exchange").Logger)

	log.Info("Exchange rates configured",
		"base_url", cfg.Exchange.BaseURL,
		"ttl", cfg.Exchange.TTL,
		"fallback", cfg.Exchange.Fallback,
	)
	return provider, nil
}
