package tools

import (
	"strings"
	"testing"
)

func TestFormatSearchResults_MarketRelevantFirst(t *testing.T) {
	results := []searchResult{
		{Title: "Local bakery opens downtown", URL: "https://example.com/bakery", Description: "A new pastry shop"},
		{Title: "BTC rallies past 70k", URL: "https://example.com/btc", Description: "crypto market surge today"},
	}

	out := formatSearchResults("news", results, "test")

	btcIdx := strings.Index(out, "BTC rallies")
	bakeryIdx := strings.Index(out, "Local bakery")
	if btcIdx < 0 || bakeryIdx < 0 {
		t.Fatalf("expected both results present, got %q", out)
	}
	if btcIdx > bakeryIdx {
		t.Errorf("expected market-relevant result to sort first, got %q", out)
	}
	if !strings.Contains(out, "[market: crypto]") {
		t.Errorf("expected crypto market annotation, got %q", out)
	}
}

func TestFormatSearchResults_NoResults(t *testing.T) {
	out := formatSearchResults("nothing", nil, "test")
	if out != "No results found for: nothing" {
		t.Errorf("got %q", out)
	}
}
