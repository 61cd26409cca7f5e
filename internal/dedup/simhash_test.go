package dedup

import "testing"

func TestComputeSimHash_EmptyText(t *testing.T) {
	if got := ComputeSimHash(""); got != 0 {
		t.Errorf("ComputeSimHash(\"\") = %d, want 0", got)
	}
}

func TestComputeSimHash_Deterministic(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	a := ComputeSimHash(text)
	b := ComputeSimHash(text)
	if a != b {
		t.Errorf("ComputeSimHash not deterministic: %d != %d", a, b)
	}
}

func TestComputeSimHash_IgnoresURLsAndMentions(t *testing.T) {
	base := ComputeSimHash("check this out @someone")
	withURL := ComputeSimHash("check this out @someone https://example.com/path")
	if base != withURL {
		t.Errorf("expected URL/mention stripping to produce identical fingerprints, got %d != %d", base, withURL)
	}
}

func TestHammingDistance_Identical(t *testing.T) {
	fp := ComputeSimHash("some text to fingerprint")
	if d := HammingDistance(fp, fp); d != 0 {
		t.Errorf("HammingDistance(fp, fp) = %d, want 0", d)
	}
}

func TestSimilarity_Identical(t *testing.T) {
	fp := ComputeSimHash("some text to fingerprint")
	if s := Similarity(fp, fp); s != 1.0 {
		t.Errorf("Similarity(fp, fp) = %f, want 1.0", s)
	}
}

func TestSimilarity_NearDuplicateHigherThanUnrelated(t *testing.T) {
	original := "breaking news: the market rallied sharply today on strong earnings"
	nearDup := "breaking news: the market rallied sharply today on strong earnings!!"
	unrelated := "the weather this weekend looks great for hiking"

	fpOriginal := ComputeSimHash(original)
	fpNear := ComputeSimHash(nearDup)
	fpUnrelated := ComputeSimHash(unrelated)

	simNear := Similarity(fpOriginal, fpNear)
	simUnrelated := Similarity(fpOriginal, fpUnrelated)

	if simNear <= simUnrelated {
		t.Errorf("expected near-duplicate similarity (%f) > unrelated similarity (%f)", simNear, simUnrelated)
	}
}
