package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"Essence/internal/cache"
	dom "Essence/internal/domain"
	"Essence/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("essence not found")

type EssenceService struct {
	repo  repo.EssenceRepo
	cache *cache.EssenceCache
	sf    singleflight.Group
}

// NewEssenceService creates an EssenceService. If c is nil, caching is disabled.
func NewEssenceService(r repo.EssenceRepo, c *cache.EssenceCache) *EssenceService {
	return &EssenceService{repo: r, cache: c}
}

func (s *EssenceService) Create(ctx context.Context, e dom.Essence) (dom.Essence, error) {
	out, err := s.repo.Create(ctx, e)
	if err != nil {
		return dom.Essence{}, err
	}
	s.invalidateCache(ctx)
	return out, nil
}

// BulkCreate persists all payloads in one transaction, preserving input order.
func (s *EssenceService) BulkCreate(ctx context.Context, es []dom.Essence) ([]dom.Essence, error) {
	out, err := s.repo.CreateBatch(ctx, es)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return out, nil
}

func (s *EssenceService) GetByID(ctx context.Context, id int64) (dom.Essence, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Essence{}, ErrNotFound
		}
		return dom.Essence{}, err
	}
	return e, nil
}

func (s *EssenceService) List(ctx context.Context, f repo.EssenceFilter) ([]dom.Essence, error) {
	if s.cache != nil {
		key := listKey(f)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, key); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, f)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, key, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Essence), nil
	}
	return s.repo.List(ctx, f)
}

// Replace overwrites every field of the stored row, signaling ErrNotFound for unknown ids.
func (s *EssenceService) Replace(ctx context.Context, id int64, e dom.Essence) (dom.Essence, error) {
	out, err := s.repo.Update(ctx, id, e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Essence{}, ErrNotFound
		}
		return dom.Essence{}, err
	}
	s.invalidateCache(ctx)
	return out, nil
}

// Update applies only the supplied fields; nil pointers leave the stored value untouched.
func (s *EssenceService) Update(ctx context.Context, id int64, name *string, quantity *int64, isDone *bool) (dom.Essence, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Essence{}, ErrNotFound
		}
		return dom.Essence{}, err
	}
	patch := existing
	if name != nil {
		patch.Name = *name
	}
	if quantity != nil {
		patch.Quantity = *quantity
	}
	if isDone != nil {
		patch.IsDone = *isDone
	}
	out, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Essence{}, ErrNotFound
		}
		return dom.Essence{}, err
	}
	s.invalidateCache(ctx)
	return out, nil
}

func (s *EssenceService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *EssenceService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}

// listKey serializes a filter into a stable cache/singleflight key.
func listKey(f repo.EssenceFilter) string {
	done := "-"
	if f.IsDone != nil {
		done = strconv.FormatBool(*f.IsDone)
	}
	min := "-"
	if f.MinQuantity != nil {
		min = strconv.FormatInt(*f.MinQuantity, 10)
	}
	max := "-"
	if f.MaxQuantity != nil {
		max = strconv.FormatInt(*f.MaxQuantity, 10)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%d:%d", f.Name, done, min, max, f.Limit, f.Offset)
}
