// Package provider implements the market-data provider abstraction layer.
// It defines a Provider interface, a Fetcher interface, and a registry
// that routes data requests to the appropriate provider based on model type.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ModelType names a standard data model that a fetcher produces.
type ModelType string

const (
	// ModelCryptoMarkets is a page of coin listings with price, market cap
	// and 24h change, ordered by a SortOrder token. Data: []models.Coin.
	ModelCryptoMarkets ModelType = "CryptoMarkets"

	// ModelCryptoGlobal is the aggregate market summary. Data: *models.GlobalStats.
	ModelCryptoGlobal ModelType = "CryptoGlobal"

	// ModelCryptoTrending is the trending-search list. Data: []models.TrendingCoin.
	ModelCryptoTrending ModelType = "CryptoTrending"
)

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string      `json:"name"`        // e.g., "coingecko"
	Description string      `json:"description"` // human-readable description
	Website     string      `json:"website"`
	Models      []ModelType `json:"models"` // supported standard models
}

// Provider is the interface that all data providers must implement.
// Each provider registers one or more Fetcher implementations for specific
// standard model types.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Fetcher returns the fetcher for the given model type, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType

	// Ping verifies the provider's connectivity.
	Ping(ctx context.Context) error
}

// QueryParams is the generic query parameter map passed to fetchers.
// Common keys include:
//   - "vs_currency" : quote currency (e.g., "usd")
//   - "order"       : sort-order token (models.SortOrder)
//   - "per_page"    : page size
//   - "page"        : page number (coindeck only ever requests page 1)
//
// Each fetcher defines which keys it requires/supports.
type QueryParams map[string]string

// QueryParamKey constants for commonly used query parameters.
const (
	ParamCurrency = "vs_currency"
	ParamOrder    = "order"
	ParamPerPage  = "per_page"
	ParamPage     = "page"
	ParamProvider = "provider"
)

// FetchResult wraps a fetcher result with metadata.
type FetchResult struct {
	Provider  string    `json:"provider"`   // which provider returned this data
	Model     ModelType `json:"model"`      // the standard model type
	Data      any       `json:"data"`       // the fetched data (typed per model)
	FetchedAt time.Time `json:"fetched_at"` // when the data was fetched
	Cached    bool      `json:"cached"`     // whether this came from cache
}

// Fetcher is the interface for fetching a specific data type.
// Each Fetcher handles a single standard model type.
type Fetcher interface {
	// ModelType returns the standard model type this fetcher handles.
	ModelType() ModelType

	// Description returns a human-readable description of what this fetcher does.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// OptionalParams returns the parameter keys this fetcher optionally accepts.
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
