package dedup

import (
	"crypto/md5"
	"encoding/binary"
	"math/bits"
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`https?://\S+`)
	atPattern  = regexp.MustCompile(`@\w+`)
	wsPattern  = regexp.MustCompile(`\s+`)
)

// tokenize extracts word unigrams, bigrams, and trigrams from text
// after lowercasing, whitespace normalization, and stripping URLs and
// @mentions, matching the Python tokenizer this is ported from.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	t := strings.ToLower(strings.TrimSpace(text))
	t = wsPattern.ReplaceAllString(t, " ")
	t = urlPattern.ReplaceAllString(t, "")
	t = atPattern.ReplaceAllString(t, "")

	words := strings.Fields(t)
	tokens := make([]string, 0, 3*len(words))
	tokens = append(tokens, words...)
	for i := 0; i < len(words)-1; i++ {
		tokens = append(tokens, words[i]+" "+words[i+1])
	}
	for i := 0; i < len(words)-2; i++ {
		tokens = append(tokens, words[i]+" "+words[i+1]+" "+words[i+2])
	}
	return tokens
}

// hashToken hashes a token to a 64-bit integer using the first 8 bytes
// of its MD5 digest, big-endian, matching the Python implementation's
// int.from_bytes(h[:8], byteorder='big').
func hashToken(token string) uint64 {
	sum := md5.Sum([]byte(token))
	return binary.BigEndian.Uint64(sum[:8])
}

// ComputeSimHash computes the 64-bit SimHash fingerprint of text.
// Returns 0 for text with no tokens.
func ComputeSimHash(text string) uint64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var v [64]int
	for _, tok := range tokens {
		h := hashToken(tok)
		for i := 0; i < 64; i++ {
			if h&(1<<uint(i)) != 0 {
				v[i]++
			} else {
				v[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if v[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// HammingDistance returns the number of differing bits between two fingerprints.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similarity returns a value in [0,1]; 1.0 means identical fingerprints.
func Similarity(a, b uint64) float64 {
	return 1.0 - float64(HammingDistance(a, b))/64.0
}
