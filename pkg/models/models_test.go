package models

import (
	"encoding/json"
	"testing"
)

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"market_cap_desc", SortMarketCapDesc, false},
		{"market_cap_asc", SortMarketCapAsc, false},
		{"volume_desc", SortVolumeDesc, false},
		{"volume_asc", SortVolumeAsc, false},
		{"id_asc", SortIDAsc, false},
		{"id_desc", SortIDDesc, false},
		{"gecko_desc", "", true},
		{"", "", true},
		{"MARKET_CAP_DESC", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortOrder(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSortOrder(%q): expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSortOrder(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSortOrder(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if p.Show24h {
		t.Error("default Show24h should be false")
	}
	if p.SortOrder != SortMarketCapDesc {
		t.Errorf("default SortOrder = %q, want %q", p.SortOrder, SortMarketCapDesc)
	}
}

func TestCoinNullChangeDecodes(t *testing.T) {
	// The markets endpoint returns null for coins without 24h history.
	raw := `{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":67230.12,
		"market_cap":1325000000000,"price_change_percentage_24h":null}`

	var c Coin
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ID != "bitcoin" {
		t.Errorf("ID = %q, want bitcoin", c.ID)
	}
	if c.ChangePct24h != nil {
		t.Errorf("ChangePct24h = %v, want nil", *c.ChangePct24h)
	}
}

func TestPreferencesJSONKeys(t *testing.T) {
	// Stored prefs use the historical key names; a rename would orphan
	// everyone's persisted settings.
	data, err := json.Marshal(Preferences{Show24h: true, SortOrder: SortVolumeDesc})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"show24h":true,"sortOrder":"volume_desc"}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}
