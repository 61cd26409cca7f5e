package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/elliotchance/orderedmap/v3"
)

// fingerprintEntry is the value stored per SimHash fingerprint: the
// channel it was first seen in and when.
type fingerprintEntry struct {
	ChannelID string
	FirstSeen time.Time
}

// Stats mirrors the Python deduplicator's stats dict.
type Stats struct {
	TotalChecked    int     `json:"total_checked"`
	ExactDuplicates int     `json:"exact_duplicates"`
	NearDuplicates  int     `json:"near_duplicates"`
	UniqueMessages  int     `json:"unique_messages"`
	CacheSize       int     `json:"cache_size"`
	ExactCacheSize  int     `json:"exact_cache_size"`
	DedupRate       float64 `json:"dedup_rate"`
}

// Deduplicator detects exact and near-duplicate messages using
// content hashing and SimHash, backed by FIFO-evicting ordered caches.
// Grounded on original_source's MessageDeduplicator: an OrderedMap
// whose popitem(last=False) eviction is reproduced here via
// orderedmap/v3's insertion-ordered Front()/Delete().
type Deduplicator struct {
	mu sync.Mutex

	maxCacheSize        int
	similarityThreshold float64
	minTextLength        int

	fingerprints *orderedmap.OrderedMap[uint64, fingerprintEntry]
	exactHashes  *orderedmap.OrderedMap[string, time.Time]

	totalChecked    int
	exactDuplicates int
	nearDuplicates  int
	uniqueMessages  int
}

// New constructs a Deduplicator. minTextLength matches the Python
// default of 20: messages shorter than this are never considered for
// dedup (too little signal to fingerprint reliably).
func New(maxCacheSize int, similarityThreshold float64) *Deduplicator {
	return &Deduplicator{
		maxCacheSize:        maxCacheSize,
		similarityThreshold: similarityThreshold,
		minTextLength:       20,
		fingerprints:        orderedmap.NewOrderedMap[uint64, fingerprintEntry](),
		exactHashes:         orderedmap.NewOrderedMap[string, time.Time](),
	}
}

func exactHash(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// IsDuplicate checks whether text is an exact or near duplicate of a
// previously seen message. If it is new, it is recorded.
//
// Returns (true, "exact") for an exact match, (true, "near:0.92") for
// a near-duplicate at 92% similarity, or (false, "") for a unique
// message. Messages shorter than minTextLength are never flagged.
func (d *Deduplicator) IsDuplicate(text, channelID string, checkNearDuplicates bool) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.totalChecked++

	if utf8.RuneCountInString(text) < d.minTextLength {
		return false, ""
	}

	eh := exactHash(text)
	if _, ok := d.exactHashes.Get(eh); ok {
		d.exactDuplicates++
		return true, "exact"
	}

	if checkNearDuplicates {
		fp := ComputeSimHash(text)
		for el := d.fingerprints.Front(); el != nil; el = el.Next() {
			sim := Similarity(fp, el.Key)
			if sim >= d.similarityThreshold {
				d.nearDuplicates++
				return true, fmt.Sprintf("near:%.2f", sim)
			}
		}
		d.fingerprints.Set(fp, fingerprintEntry{ChannelID: channelID, FirstSeen: time.Now()})
	}

	d.exactHashes.Set(eh, time.Now())
	d.evictIfNeeded()
	d.uniqueMessages++
	return false, ""
}

// AddMessage records text in the dedup cache without checking it,
// used to pre-populate the cache from persisted history on startup.
func (d *Deduplicator) AddMessage(text, channelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if utf8.RuneCountInString(text) < d.minTextLength {
		return
	}
	eh := exactHash(text)
	fp := ComputeSimHash(text)
	d.exactHashes.Set(eh, time.Now())
	d.fingerprints.Set(fp, fingerprintEntry{ChannelID: channelID, FirstSeen: time.Now()})
	d.evictIfNeeded()
}

// evictIfNeeded evicts the oldest-inserted entries (FIFO, matching
// Python's OrderedDict.popitem(last=False)) until both caches are
// within maxCacheSize. Must be called with d.mu held.
func (d *Deduplicator) evictIfNeeded() {
	for d.fingerprints.Len() > d.maxCacheSize {
		if el := d.fingerprints.Front(); el != nil {
			d.fingerprints.Delete(el.Key)
		}
	}
	for d.exactHashes.Len() > d.maxCacheSize {
		if el := d.exactHashes.Front(); el != nil {
			d.exactHashes.Delete(el.Key)
		}
	}
}

// Clear resets all caches and stats.
func (d *Deduplicator) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fingerprints = orderedmap.NewOrderedMap[uint64, fingerprintEntry]()
	d.exactHashes = orderedmap.NewOrderedMap[string, time.Time]()
	d.totalChecked, d.exactDuplicates, d.nearDuplicates, d.uniqueMessages = 0, 0, 0, 0
}

// GetStats returns a snapshot of dedup statistics.
func (d *Deduplicator) GetStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	rate := 0.0
	if d.totalChecked > 0 {
		rate = float64(d.exactDuplicates+d.nearDuplicates) / float64(d.totalChecked)
	}
	return Stats{
		TotalChecked:    d.totalChecked,
		ExactDuplicates: d.exactDuplicates,
		NearDuplicates:  d.nearDuplicates,
		UniqueMessages:  d.uniqueMessages,
		CacheSize:       d.fingerprints.Len(),
		ExactCacheSize:  d.exactHashes.Len(),
		DedupRate:       rate,
	}
}
