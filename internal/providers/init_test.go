package providers

import (
	"testing"

	"github.com/mkotas/coindeck/internal/provider"
)

func TestRegisterAllTo(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, ""); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	cg, err := reg.Get("coingecko")
	if err != nil {
		t.Fatalf("coingecko not registered: %v", err)
	}
	if cg.Info().Name != "coingecko" {
		t.Error("wrong coingecko provider name")
	}

	// Every model coindeck consumes must have a provider.
	for _, m := range []provider.ModelType{
		provider.ModelCryptoMarkets,
		provider.ModelCryptoGlobal,
		provider.ModelCryptoTrending,
	} {
		if len(reg.ProvidersFor(m)) == 0 {
			t.Errorf("no providers for model %s", m)
		}
	}
}

func TestRegisterAllIdempotent(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, ""); err != nil {
		t.Fatalf("first RegisterAllTo: %v", err)
	}
	// Registering again should overwrite without error.
	if err := RegisterAllTo(reg, ""); err != nil {
		t.Fatalf("second RegisterAllTo: %v", err)
	}

	list := reg.List()
	count := 0
	for _, info := range list {
		if info.Name == "coingecko" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 coingecko provider, got %d", count)
	}
}
