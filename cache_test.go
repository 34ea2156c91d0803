package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSpotSource struct {
	calls   int
	records []PriceRecord
	err     error
}

func (s *countingSpotSource) FetchSpotPrices(_ context.Context, _ time.Time, _ string) ([]PriceRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]PriceRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func TestMemoCacheSpotPrices(t *testing.T) {
	upstream := &countingSpotSource{
		records: hourlySpot(time.Date(2024, 2, 23, 0, 0, 0, 0, Copenhagen), 68.800003, 70),
	}
	src := NewMemoCache(time.Minute).WithSpotPrices(upstream)
	ctx := context.Background()
	date := day(2024, 2, 23)

	cold, err := src.FetchSpotPrices(ctx, date, "DK1")
	require.NoError(t, err)
	warm, err := src.FetchSpotPrices(ctx, date.Add(13*time.Hour), "DK1")
	require.NoError(t, err)

	require.Equal(t, 1, upstream.calls)
	require.Equal(t, cold, warm)
	require.Same(t, &cold[0], &warm[0])

	_, err = src.FetchSpotPrices(ctx, date, "DK2")
	require.NoError(t, err)
	require.Equal(t, 2, upstream.calls)
}

func TestMemoCacheDoesNotCacheErrors(t *testing.T) {
	upstream := &countingSpotSource{err: ErrUpstreamUnavailable}
	src := NewMemoCache(time.Minute).WithSpotPrices(upstream)
	ctx := context.Background()

	_, err := src.FetchSpotPrices(ctx, day(2024, 2, 23), "DK1")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)

	upstream.err = nil
	upstream.records = hourlySpot(day(2024, 2, 23), 1)
	recs, err := src.FetchSpotPrices(ctx, day(2024, 2, 23), "DK1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 2, upstream.calls)
}

func TestMemoCacheExpiry(t *testing.T) {
	c := NewMemoCache(20 * time.Millisecond)
	calls := 0
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	v, err := memoize(c, "test", "k", fetch)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	v, err = memoize(c, "test", "k", fetch)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	time.Sleep(40 * time.Millisecond)

	v, err = memoize(c, "test", "k", fetch)
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

type stubAddressLookup map[string]string

func (s stubAddressLookup) LookupGridCompanyID(_ context.Context, address string) (string, error) {
	id, ok := s[address]
	if !ok {
		return "", ErrAddressNotFound
	}
	return id, nil
}

func TestMemoCacheAddressKeyIsNormalized(t *testing.T) {
	calls := 0
	var upstream AddressLookup = addressLookupFunc(func(_ context.Context, address string) (string, error) {
		calls++
		if address == "" {
			return "", errors.New("empty")
		}
		return "344", nil
	})
	src := NewMemoCache(time.Minute).WithAddressLookup(upstream)

	for _, addr := range []string{"Vestergade 1, 8000 Aarhus", "  vestergade 1, 8000 aarhus "} {
		id, err := src.LookupGridCompanyID(context.Background(), addr)
		require.NoError(t, err)
		require.Equal(t, "344", id)
	}
	require.Equal(t, 1, calls)
}

type addressLookupFunc func(ctx context.Context, address string) (string, error)

func (f addressLookupFunc) LookupGridCompanyID(ctx context.Context, address string) (string, error) {
	return f(ctx, address)
}
