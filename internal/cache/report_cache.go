// Package cache keeps computed monthly report totals in memcached.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"flowtrack/internal/logger"
	"flowtrack/internal/models"

	"github.com/bradfitz/gomemcache/memcache"
)

// ReportCache stores per-user, per-year monthly totals. Entries are keyed by
// a per-user generation; Invalidate moves the generation forward so that a
// fill computed before a ledger change can never be read after it.
// Lookups and writes are best-effort: failures are logged and treated as
// misses.
type ReportCache interface {
	// Generation returns the user's current generation. ok is false when
	// the cache cannot be used for this request.
	Generation(userID string) (gen uint64, ok bool)
	GetMonthlyTotals(userID string, gen uint64, year int) ([]models.MonthTotals, bool)
	SetMonthlyTotals(userID string, gen uint64, year int, totals []models.MonthTotals)
	Invalidate(userID string)
}

// client is the subset of *memcache.Client used here.
type client interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
}

// MemcacheReportCache is a ReportCache backed by memcached.
type MemcacheReportCache struct {
	client client
	ttl    time.Duration
	seed   func() uint64
}

// NewMemcacheReportCache connects to the given hosts and verifies that at
// least one answers.
func NewMemcacheReportCache(hosts []string, ttl time.Duration) (*MemcacheReportCache, error) {
	logger.Get().Infow("memcached hosts", "hosts", hosts)
	mc := memcache.New(hosts...)
	if err := mc.Ping(); err != nil {
		return nil, fmt.Errorf("ping memcached: %w", err)
	}
	return &MemcacheReportCache{client: mc, ttl: ttl, seed: clockSeed}, nil
}

// clockSeed starts a missing generation counter above any value an evicted
// counter could have reached.
func clockSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

func generationKey(userID string) string {
	return fmt.Sprintf("flowtrack:report:gen:%s", userID)
}

func formatKey(userID string, gen uint64, year int) string {
	return fmt.Sprintf("flowtrack:report:%s:%d:%d", userID, gen, year)
}

// Generation reads the user's generation counter, creating it on first use.
func (c *MemcacheReportCache) Generation(userID string) (uint64, bool) {
	key := generationKey(userID)
	for attempt := 0; attempt < 2; attempt++ {
		item, err := c.client.Get(key)
		if err == nil {
			gen, perr := strconv.ParseUint(string(item.Value), 10, 64)
			if perr != nil {
				logger.Get().Warnw("unreadable report generation", "user_id", userID, "error", perr)
				return 0, false
			}
			return gen, true
		}
		if !errors.Is(err, memcache.ErrCacheMiss) {
			logger.Get().Warnw("report generation get failed", "user_id", userID, "error", err)
			return 0, false
		}

		gen := c.seed()
		err = c.client.Add(&memcache.Item{Key: key, Value: []byte(strconv.FormatUint(gen, 10))})
		if err == nil {
			return gen, true
		}
		// Lost the race to another reader or writer: read theirs.
		if !errors.Is(err, memcache.ErrNotStored) {
			logger.Get().Warnw("report generation add failed", "user_id", userID, "error", err)
			return 0, false
		}
	}
	return 0, false
}

// GetMonthlyTotals returns the totals cached under the generation, if any.
func (c *MemcacheReportCache) GetMonthlyTotals(userID string, gen uint64, year int) ([]models.MonthTotals, bool) {
	item, err := c.client.Get(formatKey(userID, gen, year))
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			logger.Get().Warnw("report cache get failed", "user_id", userID, "year", year, "error", err)
		}
		return nil, false
	}

	var totals []models.MonthTotals
	if err := json.Unmarshal(item.Value, &totals); err != nil {
		logger.Get().Warnw("discarding unreadable cached report", "user_id", userID, "year", year, "error", err)
		return nil, false
	}
	return totals, true
}

// SetMonthlyTotals stores totals under the generation for the configured TTL.
func (c *MemcacheReportCache) SetMonthlyTotals(userID string, gen uint64, year int, totals []models.MonthTotals) {
	body, err := json.Marshal(totals)
	if err != nil {
		logger.Get().Warnw("report cache encode failed", "user_id", userID, "year", year, "error", err)
		return
	}
	err = c.client.Set(&memcache.Item{
		Key:        formatKey(userID, gen, year),
		Value:      body,
		Expiration: int32(c.ttl.Seconds()),
	})
	if err != nil {
		logger.Get().Warnw("report cache set failed", "user_id", userID, "year", year, "error", err)
	}
}

// Invalidate bumps the user's generation, orphaning every cached year.
// Orphaned entries expire on their TTL.
func (c *MemcacheReportCache) Invalidate(userID string) {
	key := generationKey(userID)
	_, err := c.client.Increment(key, 1)
	if err == nil {
		return
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		logger.Get().Warnw("report cache invalidate failed", "user_id", userID, "error", err)
		return
	}

	// No counter means nothing was cached under a known generation, but a
	// reader may be about to create one; start above it.
	err = c.client.Add(&memcache.Item{Key: key, Value: []byte(strconv.FormatUint(c.seed(), 10))})
	if errors.Is(err, memcache.ErrNotStored) {
		_, err = c.client.Increment(key, 1)
	}
	if err != nil {
		logger.Get().Warnw("report cache invalidate failed", "user_id", userID, "error", err)
	}
}

// NopReportCache never stores anything.
type NopReportCache struct{}

func (NopReportCache) Generation(string) (uint64, bool) { return 0, false }
func (NopReportCache) GetMonthlyTotals(string, uint64, int) ([]models.MonthTotals, bool) { return nil, false }
func (NopReportCache) SetMonthlyTotals(string, uint64, int, []models.MonthTotals) {}
func (NopReportCache) Invalidate(string) {}
