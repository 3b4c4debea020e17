package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/settings"
	"github.com/nextstock/backend/internal/domain/shared"
)

// SettingsCache is a read-through cache for store settings. Implementations
// must treat a miss as (nil, nil).
type SettingsCache interface {
	Get(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error)
	Set(ctx context.Context, s *settings.StoreSettings) error
	Invalidate(ctx context.Context, storeID uuid.UUID) error
}

// SettingsService handles per-store configuration. Reads go through the
// cache; updates write the repository and invalidate.
type SettingsService struct {
	repo           settings.StoreSettingsRepository
	cache          SettingsCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo settings.StoreSettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger,
	}
}

// SetCache sets the read-through cache
func (s *SettingsService) SetCache(cache SettingsCache) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher for domain events
func (s *SettingsService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Get returns the settings for a store. A store that has never saved
// settings gets the system defaults (not persisted).
func (s *SettingsService) Get(ctx context.Context, storeID uuid.UUID) (*SettingsResponse, error) {
	stored, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}

	resp := ToSettingsResponse(stored)
	return &resp, nil
}

// Update applies the non-nil fields and invalidates the cache
func (s *SettingsService) Update(ctx context.Context, storeID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	stored, err := s.loadFromRepo(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if req.Currency != nil {
		if err := stored.SetCurrency(*req.Currency); err != nil {
			return nil, err
		}
	}
	if req.DefaultTaxRate != nil {
		if err := stored.SetDefaultTaxRate(*req.DefaultTaxRate); err != nil {
			return nil, err
		}
	}
	if req.ReceiptHeader != nil || req.ReceiptFooter != nil {
		header := stored.ReceiptHeader
		footer := stored.ReceiptFooter
		if req.ReceiptHeader != nil {
			header = *req.ReceiptHeader
		}
		if req.ReceiptFooter != nil {
			footer = *req.ReceiptFooter
		}
		if err := stored.SetReceiptText(header, footer); err != nil {
			return nil, err
		}
	}
	if req.LowStockThreshold != nil {
		if err := stored.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}
	if req.DiscrepancyTolerance != nil {
		if err := stored.SetDiscrepancyTolerance(*req.DiscrepancyTolerance); err != nil {
			return nil, err
		}
	}
	if req.ProformaValidityDays != nil {
		if err := stored.SetProformaValidityDays(*req.ProformaValidityDays); err != nil {
			return nil, err
		}
	}
	if req.Extras != nil {
		for key, value := range *req.Extras {
			if err := stored.SetExtra(key, value); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, err
	}

	s.invalidate(ctx, storeID)
	s.publishEvents(ctx, stored)

	s.logger.Info("Store settings updated", zap.String("store_id", storeID.String()))

	resp := ToSettingsResponse(stored)
	return &resp, nil
}

// RemoveExtra deletes a key-value extra setting
func (s *SettingsService) RemoveExtra(ctx context.Context, storeID uuid.UUID, key string) (*SettingsResponse, error) {
	stored, err := s.loadFromRepo(ctx, storeID)
	if err != nil {
		return nil, err
	}

	stored.RemoveExtra(key)

	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, err
	}

	s.invalidate(ctx, storeID)
	s.publishEvents(ctx, stored)

	resp := ToSettingsResponse(stored)
	return &resp, nil
}

func (s *SettingsService) load(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, storeID)
		if err != nil {
			s.logger.Warn("Settings cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stored, err := s.loadFromRepo(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stored); err != nil {
			s.logger.Warn("Settings cache write failed", zap.Error(err))
		}
	}

	return stored, nil
}

// loadFromRepo falls back to fresh defaults for stores without a saved row
func (s *SettingsService) loadFromRepo(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	stored, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return settings.NewStoreSettings(storeID)
		}
		return nil, err
	}
	return stored, nil
}

func (s *SettingsService) invalidate(ctx context.Context, storeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, storeID); err != nil {
		s.logger.Error("Settings cache invalidation failed",
			zap.String("store_id", storeID.String()),
			zap.Error(err))
	}
}

func (s *SettingsService) publishEvents(ctx context.Context, stored *settings.StoreSettings) {
	if s.eventPublisher == nil {
		stored.ClearDomainEvents()
		return
	}
	for _, event := range stored.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	stored.ClearDomainEvents()
}
