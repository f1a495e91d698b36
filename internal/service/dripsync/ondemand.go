package dripsync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// GetWindows returns the window map for one ticker, serving from the
// TTL cache when fresh and computing otherwise
func (s *Service) GetWindows(ctx context.Context, symbol string) (map[int]drip.Result, error) {
	if cached := s.cache.Get(symbol); cached != nil {
		return cached, nil
	}
	return s.ComputeTicker(ctx, symbol)
}

// ComputeTicker recomputes one ticker on demand, persists the result,
// and refreshes the cache. Concurrent requests for the same ticker are
// collapsed into a single computation.
func (s *Service) ComputeTicker(ctx context.Context, symbol string) (map[int]drip.Result, error) {
	if _, err := s.tickerRepo.Get(ctx, symbol); err != nil {
		return nil, fmt.Errorf("resolve ticker: %w", err)
	}

	v, err, shared := s.group.Do(symbol, func() (interface{}, error) {
		windows, err := s.computeAndStore(ctx, symbol)
		if err != nil {
			return nil, err
		}
		s.cache.Set(symbol, windows)
		return windows, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		log.Debug().Str("ticker", symbol).Msg("On-demand computation shared between requests")
	}

	return v.(map[int]drip.Result), nil
}
