package main

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// MemoCache stores upstream results for a fixed time. Entries are never
// invalidated early and are never modified once stored, so a hit returns
// exactly what the cold fetch returned. Concurrent misses on the same key
// each fetch independently.
type MemoCache struct {
	store *gocache.Cache
}

// NewMemoCache creates a cache whose entries expire after ttl.
func NewMemoCache(ttl time.Duration) *MemoCache {
	return &MemoCache{store: gocache.New(ttl, 2*ttl)}
}

// memoize returns the cached value for key or calls fetch and caches its
// result. Errors are not cached.
func memoize[T any](c *MemoCache, source string, key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.store.Get(key); ok {
		cacheLookups.WithLabelValues(source, "hit").Inc()
		return v.(T), nil
	}
	cacheLookups.WithLabelValues(source, "miss").Inc()

	v, err := fetch()
	if err != nil {
		return v, err
	}
	c.store.Set(key, v, gocache.DefaultExpiration)
	log.Debug().Str("source", source).Str("key", key).Msg("cached upstream result")
	return v, nil
}

func cacheKey(parts ...string) string {
	return strings.Join(parts, "|")
}

type cachedSpotPrices struct {
	next  SpotPriceSource
	cache *MemoCache
}

func (c *cachedSpotPrices) FetchSpotPrices(ctx context.Context, date time.Time, priceArea string) ([]PriceRecord, error) {
	key := cacheKey("spot", date.In(Copenhagen).Format(time.DateOnly), priceArea)
	return memoize(c.cache, "spot", key, func() ([]PriceRecord, error) {
		return c.next.FetchSpotPrices(ctx, date, priceArea)
	})
}

type cachedEmissions struct {
	next  EmissionSource
	cache *MemoCache
}

func (c *cachedEmissions) FetchEmissions(ctx context.Context, date time.Time, priceArea string) ([]EmissionSample, error) {
	key := cacheKey("co2", date.In(Copenhagen).Format(time.DateOnly), priceArea)
	return memoize(c.cache, "co2", key, func() ([]EmissionSample, error) {
		return c.next.FetchEmissions(ctx, date, priceArea)
	})
}

type cachedTariffs struct {
	next  TariffSource
	cache *MemoCache
}

func (c *cachedTariffs) FetchTariffs(ctx context.Context, glnNumber, chargeTypeCode string) ([]TariffInterval, error) {
	key := cacheKey("tariff", glnNumber, chargeTypeCode)
	return memoize(c.cache, "tariff", key, func() ([]TariffInterval, error) {
		return c.next.FetchTariffs(ctx, glnNumber, chargeTypeCode)
	})
}

type cachedAddressLookup struct {
	next  AddressLookup
	cache *MemoCache
}

func (c *cachedAddressLookup) LookupGridCompanyID(ctx context.Context, address string) (string, error) {
	key := cacheKey("address", strings.ToLower(strings.TrimSpace(address)))
	return memoize(c.cache, "address", key, func() (string, error) {
		return c.next.LookupGridCompanyID(ctx, address)
	})
}

// WithSpotPrices wraps src with the cache.
func (c *MemoCache) WithSpotPrices(src SpotPriceSource) SpotPriceSource {
	return &cachedSpotPrices{next: src, cache: c}
}

// WithEmissions wraps src with the cache.
func (c *MemoCache) WithEmissions(src EmissionSource) EmissionSource {
	return &cachedEmissions{next: src, cache: c}
}

// WithTariffs wraps src with the cache.
func (c *MemoCache) WithTariffs(src TariffSource) TariffSource {
	return &cachedTariffs{next: src, cache: c}
}

// WithAddressLookup wraps src with the cache.
func (c *MemoCache) WithAddressLookup(src AddressLookup) AddressLookup {
	return &cachedAddressLookup{next: src, cache: c}
}

