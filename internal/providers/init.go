// Package providers initializes and registers all concrete data providers
// with the provider registry.
package providers

import (
	"github.com/mkotas/coindeck/internal/provider"
	"github.com/mkotas/coindeck/internal/providers/coingecko"
)

// RegisterAll creates and registers all available providers with the
// global registry, pointing them at their default API roots.
func RegisterAll() error {
	return RegisterAllTo(provider.Global(), "")
}

// RegisterAllTo registers all available providers to the given registry.
// A non-empty apiBase overrides the CoinGecko API root (config
// market.api_base, also how tests point fetchers at a mock server).
func RegisterAllTo(reg *provider.Registry, apiBase string) error {
	cg := coingecko.New()
	if apiBase != "" {
		cg = coingecko.NewWithBaseURL(apiBase)
	}
	return reg.Register(cg)
}
