package database

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListRates returns every stored rate in karat order.
func (s *Store) ListRates(ctx context.Context) ([]models.Rate, error) {
	var rows []models.Rate
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return karatOrder(rows[i].Karat) < karatOrder(rows[j].Karat)
	})
	return rows, nil
}

// RateTable reads the stored rates as a lookup table for pricing.
func (s *Store) RateTable(ctx context.Context) (billing.RateTable, error) {
	rows, err := s.ListRates(ctx)
	if err != nil {
		return nil, err
	}
	table := make(billing.RateTable, len(rows))
	for _, r := range rows {
		if k, ok := billing.ParseKarat(r.Karat); ok {
			table[k] = r.Rate
		}
	}
	return table, nil
}

// UpsertRates writes all given rates or none of them.
func (s *Store) UpsertRates(ctx context.Context, rates map[billing.Karat]float64) error {
	rows := make([]models.Rate, 0, len(rates))
	for k, v := range rates {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown karat %q", ErrInvalidRate, k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidRate, k, v)
		}
		rows = append(rows, models.Rate{Karat: string(k), Rate: v})
	}
	if len(rows) == 0 {
		return nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Karat < rows[j].Karat })

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "karat"}},
				DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
			}).Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("upsert rate %s: %w", rows[i].Karat, err)
			}
		}
		return nil
	})
}

// SeedDefaultRates fills an empty rate table. It reports whether anything was written.
func (s *Store) SeedDefaultRates(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Rate{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count rates: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.UpsertRates(ctx, billing.DefaultRates()); err != nil {
		return false, err
	}
	return true, nil
}

func karatOrder(raw string) int {
	for i, k := range billing.Karats {
		if string(k) == raw {
			return i
		}
	}
	return len(billing.Karats)
}
