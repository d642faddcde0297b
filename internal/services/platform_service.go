package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"freelance-escrow/internal/models"
	"freelance-escrow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlatformService owns the platform configuration row and the shared id
// allocator.
type PlatformService struct {
	db     *gorm.DB
	ledger *repository.Ledger
	mu     sync.Mutex
}

func NewPlatformService(db *gorm.DB) *PlatformService {
	return &PlatformService{
		db:     db,
		ledger: repository.NewLedger(db),
	}
}

// EnsureInstantiated creates the configuration row and seeds the id counter
// on first boot. Later boots leave the stored configuration untouched.
func (s *PlatformService) EnsureInstantiated(ctx context.Context, owner string, feeBps uint64) error {
	if feeBps > models.MaxPlatformFeeBps {
		return models.ErrInvalidFee
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		config, err := led.GetConfig(ctx)
		if err == nil {
			log.Printf("Platform config present: owner %s, fee %d bps", config.Owner, config.PlatformFeeBps)
			return nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		if err := led.SaveConfig(ctx, &models.PlatformConfig{
			Owner:          owner,
			PlatformFeeBps: feeBps,
		}); err != nil {
			return err
		}
		if err := led.SeedCounter(ctx); err != nil {
			return err
		}

		log.Printf("Platform instantiated: owner %s, fee %d bps", owner, feeBps)
		return nil
	})
}

// GetConfig returns the stored platform configuration.
func (s *PlatformService) GetConfig(ctx context.Context) (*models.PlatformConfig, error) {
	return s.ledger.GetConfig(ctx)
}

// UpdatePlatformFee changes the fee taken from milestone releases. Owner
// only; the fee is capped at 10%.
func (s *PlatformService) UpdatePlatformFee(ctx context.Context, caller string, newFeeBps uint64) (*models.PlatformConfig, error) {
	if newFeeBps > models.MaxPlatformFeeBps {
		return nil, models.ErrInvalidFee
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *models.PlatformConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		var err error
		config, err = led.GetConfig(ctx)
		if err != nil {
			return err
		}
		if config.Owner != caller {
			return models.ErrUnauthorized
		}

		config.PlatformFeeBps = newFeeBps
		config.UpdatedAt = time.Now()
		if err := led.SaveConfig(ctx, config); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:     uuid.New(),
			Type:   models.EventFeeUpdated,
			Actor:  caller,
			Amount: newFeeBps,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Platform fee updated to %d bps by %s", newFeeBps, caller)
	return config, nil
}
