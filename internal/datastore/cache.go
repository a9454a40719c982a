package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invest_bot/internal/domain/entity"
)

const (
	// PortfolioCacheTTL keeps spreadsheet holdings reusable across runs
	// within the hour.
	PortfolioCacheTTL = 60 * time.Minute
	// MarketDataTTL is the freshness window for fetched price history.
	MarketDataTTL = 12 * time.Hour

	portfolioCacheKey = "portfolio_records"
)

// SetCache stores a JSON-serialized value under key with the given TTL as a
// single atomic upsert. A serialization failure surfaces to the caller and
// nothing is written.
func (s *Store) SetCache(key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serialize cache %q: %w", key, err)
	}
	now := s.now()
	m := CacheModel{
		Key:       key,
		Value:     string(b),
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("set cache %q: %w", key, err)
	}
	return nil
}

// GetCache loads a live cache entry into dest and reports whether one was
// found. Expired rows are ignored, not deleted; they disappear on the next
// overwrite.
func (s *Store) GetCache(key string, dest any) (bool, error) {
	var m CacheModel
	err := s.db.Where("key = ? AND expires_at > ?", key, s.now()).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get cache %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(m.Value), dest); err != nil {
		return false, fmt.Errorf("deserialize cache %q: %w", key, err)
	}
	return true, nil
}

// SetPortfolioCache caches the merged spreadsheet holdings so repeated runs
// within the TTL window skip the spreadsheet fetch entirely.
func (s *Store) SetPortfolioCache(holdings []entity.Holding) error {
	return s.SetCache(portfolioCacheKey, holdings, PortfolioCacheTTL)
}

// GetPortfolioCache returns the cached holdings list, if still live.
func (s *Store) GetPortfolioCache() ([]entity.Holding, bool, error) {
	var holdings []entity.Holding
	ok, err := s.GetCache(portfolioCacheKey, &holdings)
	if err != nil || !ok {
		return nil, false, err
	}
	return holdings, true, nil
}
