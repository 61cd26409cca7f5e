package market

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Category
	}{
		{"crypto", "btc just broke 70k", []Category{CategoryCrypto}},
		{"a-stock", "今天A股涨停了", []Category{CategoryAStock}},
		{"us-stock", "nasdaq had a rough day", []Category{CategoryUSStock}},
		{"hk-stock", "恒指今天大涨", []Category{CategoryHKStock}},
		{"futures", "黄金期货走势", []Category{CategoryFutures}},
		{"forex", "usdjpy broke resistance", []Category{CategoryForex}},
		{"general fallback", "let's grab lunch later", []Category{CategoryGeneral}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Categorize(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Categorize(%q) = %v, want %v", tt.text, got, tt.want)
				}
			}
		})
	}
}

func TestCategorize_MultipleDomainsAllReturned(t *testing.T) {
	got := Categorize("btc rally alongside nasdaq gains today")
	want := []Category{CategoryCrypto, CategoryUSStock}
	if len(got) != len(want) {
		t.Fatalf("Categorize = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Categorize = %v, want %v", got, want)
		}
	}
}

func TestDetectSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Sentiment
	}{
		{"bullish", "bullish breakout, rally incoming", SentimentBullish},
		{"bearish", "bearish crash, big selloff", SentimentBearish},
		{"tied counts are neutral", "bullish crash", SentimentNeutral},
		{"no keywords neutral", "nothing special today", SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectSentiment(tt.text); got != tt.want {
				t.Errorf("DetectSentiment(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsMarketRelevant(t *testing.T) {
	if !IsMarketRelevant("btc just broke 70k") {
		t.Error("expected domain keyword to be market-relevant")
	}
	if !IsMarketRelevant("快讯: big announcement") {
		t.Error("expected news keyword to be market-relevant")
	}
	if IsMarketRelevant("what's for dinner tonight") {
		t.Error("expected unrelated text to not be market-relevant")
	}
}

func TestDetectChannelCategory(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  Category
	}{
		{
			"dominant crypto channel",
			[]string{"btc rally", "eth breakout", "btc to the moon", "usdt stable", "random chat"},
			CategoryCrypto,
		},
		{
			"exactly 1.5x ratio is not dominant",
			[]string{"btc rally", "eth breakout", "btc to the moon", "恒指上涨", "南向资金", "random chat"},
			CategoryGeneral,
		},
		{
			"all general",
			[]string{"hello", "how are you", "good morning"},
			CategoryGeneral,
		},
		{
			"empty input",
			nil,
			CategoryGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectChannelCategory(tt.texts); got != tt.want {
				t.Errorf("DetectChannelCategory(%v) = %q, want %q", tt.texts, got, tt.want)
			}
		})
	}
}
