package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Edelweiss/internal/domain/models"
	domrepo "Edelweiss/internal/domain/repository"
	"Edelweiss/internal/service/cache"
	applogger "Edelweiss/pkg/logger"
)

// CachedProvider memoizes fetched series in a BytesCache. Cache errors degrade
// to a direct fetch.
type CachedProvider struct {
	next  domrepo.PriceProvider
	cache cache.BytesCache
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedProvider(next domrepo.PriceProvider, c cache.BytesCache, ttl time.Duration, l *applogger.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: c, ttl: ttl, l: l}
}

func (p *CachedProvider) Name() string { return p.next.Name() }

func (p *CachedProvider) key(symbol string, period domrepo.Period) string {
	return fmt.Sprintf("series:%s:%s:%s", p.next.Name(), symbol, period)
}

func (p *CachedProvider) FetchSeries(ctx context.Context, symbol string, period domrepo.Period) (*models.PriceSeries, error) {
	key := p.key(symbol, period)
	b, ok, err := p.cache.GetBytes(ctx, key)
	if err != nil {
		p.warn("series cache get failed", key, err)
	}
	if ok {
		var s models.PriceSeries
		if err := json.Unmarshal(b, &s); err == nil {
			return &s, nil
		}
		p.warn("series cache decode failed", key, err)
	}

	s, err := p.next.FetchSeries(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(s); err == nil {
		if err := p.cache.SetBytes(ctx, key, b, p.ttl); err != nil {
			p.warn("series cache set failed", key, err)
		}
	}
	return s, nil
}

func (p *CachedProvider) warn(msg, key string, err error) {
	if p.l == nil {
		return
	}
	p.l.Warn(msg, applogger.String("key", key), applogger.Error(err))
}
