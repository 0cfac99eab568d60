// Package sales implements the primary-sale manager: time-bounded,
// fixed-supply offers of a license token, paid in the value token with
// proceeds routed to the provider's escrow balance.
package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lumen-backend/internal/application/escrow"
	"lumen-backend/internal/capability"
	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"
	"lumen-backend/internal/registry"
	"lumen-backend/internal/token"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the sale manager. Principal is its own identity: the spender
// buyers approve for value-token debits, and the caller recorded on escrow
// deposits (it must hold the escrow-deposit capability).
type Service struct {
	DB        *gorm.DB
	Token     token.Ledger
	Registry  registry.Registry
	Escrow    *escrow.Service
	Caps      *capability.Checker
	Principal uuid.UUID

	// Mu is the marketplace-wide mutation lock, shared with the listing
	// manager and the escrow ledger.
	Mu *sync.Mutex

	// Now is the shared clock; overridable in tests. Nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() int64 {
	if s.Now != nil {
		return s.Now().Unix()
	}
	return time.Now().Unix()
}

// CreateSaleInput carries the provider's offer terms. DurationSeconds is an
// offset: the sale closes at StartTime + DurationSeconds.
type CreateSaleInput struct {
	MaxSupply       int64
	StartTime       int64
	DurationSeconds int64
	UnitPrice       int64
	RoyaltyBps      int64
}

// Create opens a sale. It allocates a fresh registry token id, registers the
// provider's royalty terms on it, and records the sale as active.
func (s *Service) Create(ctx context.Context, provider uuid.UUID, in CreateSaleInput) (*domain.Sale, error) {
	if in.MaxSupply <= 0 {
		return nil, fmt.Errorf("%w: max supply must be positive", apperrors.ErrValidation)
	}
	if in.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unit price must not be negative", apperrors.ErrValidation)
	}
	if in.RoyaltyBps < 0 || in.RoyaltyBps > 10000 {
		return nil, fmt.Errorf("%w: royalty bps out of range", apperrors.ErrValidation)
	}
	if in.StartTime <= 0 || in.DurationSeconds <= 0 {
		return nil, fmt.Errorf("%w: end time must be after start time", apperrors.ErrInvalidWindow)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	var sale *domain.Sale
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokenID, err := s.Registry.NextTokenID(tx)
		if err != nil {
			return err
		}
		if err := s.Registry.SetRoyalty(tx, tokenID, provider, in.RoyaltyBps); err != nil {
			return err
		}

		sale = &domain.Sale{
			TokenID:    tokenID,
			Provider:   provider,
			MaxSupply:  in.MaxSupply,
			StartTime:  in.StartTime,
			EndTime:    in.StartTime + in.DurationSeconds,
			UnitPrice:  in.UnitPrice,
			RoyaltyBps: in.RoyaltyBps,
			Active:     true,
		}
		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		return recordEvent(tx, sale.SaleID, domain.EventCreated, provider, map[string]interface{}{
			"token_id":    tokenID,
			"max_supply":  in.MaxSupply,
			"unit_price":  in.UnitPrice,
			"royalty_bps": in.RoyaltyBps,
			"start_time":  sale.StartTime,
			"end_time":    sale.EndTime,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("sale_id", sale.SaleID).Uint64("token_id", sale.TokenID).
		Str("provider", provider.String()).Msg("sale created")
	return sale, nil
}

// Participate buys amount units from the sale and returns the sale's token
// id. Cost is debited from the buyer's value-token allowance, credited to
// the provider's escrow balance, and the registry mints the units to the
// buyer, all in one transaction. Exhausting the supply deactivates the sale.
func (s *Service) Participate(ctx context.Context, buyer uuid.UUID, saleID uint64, amount int64) (uint64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	var tokenID uint64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale domain.Sale
		if err := tx.Where("sale_id = ?", saleID).First(&sale).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: sale %d", apperrors.ErrNotFound, saleID)
			}
			return err
		}
		if !sale.Active || !sale.WithinWindow(s.now()) {
			return apperrors.ErrSaleInactive
		}
		if amount > sale.Remaining() {
			return apperrors.ErrSupplyExceeded
		}

		cost, ok := domain.TotalCost(amount, sale.UnitPrice)
		if !ok {
			return fmt.Errorf("%w: cost exceeds the representable range", apperrors.ErrValidation)
		}
		if cost > 0 {
			if err := s.Token.TransferFrom(tx, buyer, s.Principal, s.Escrow.Account, cost); err != nil {
				return err
			}
			if err := s.Escrow.DepositTx(tx, s.Principal, sale.Provider, cost); err != nil {
				return err
			}
		}
		if err := s.Registry.Mint(tx, sale.TokenID, buyer, amount); err != nil {
			return err
		}

		sale.Sold += amount
		if sale.Sold == sale.MaxSupply {
			sale.Active = false
		}
		if err := tx.Save(&sale).Error; err != nil {
			return err
		}

		from := buyer
		to := sale.Provider
		tid := sale.TokenID
		sid := sale.SaleID
		if err := tx.Create(&domain.Transaction{
			Type:        domain.TxParticipate,
			FromAccount: &from,
			ToAccount:   &to,
			Amount:      cost,
			TokenID:     &tid,
			SaleID:      &sid,
		}).Error; err != nil {
			return err
		}

		tokenID = sale.TokenID
		return recordEvent(tx, sale.SaleID, domain.EventParticipated, buyer, map[string]interface{}{
			"amount": amount,
			"cost":   cost,
			"sold":   sale.Sold,
			"active": sale.Active,
		})
	})
	if err != nil {
		return 0, err
	}

	log.Info().Uint64("sale_id", saleID).Str("buyer", buyer.String()).
		Int64("amount", amount).Msg("sale participation")
	return tokenID, nil
}

// ForceClose deactivates the sale early. Only the sale's provider or a
// holder of the market-admin capability may call it; closing an already
// inactive sale is a no-op.
func (s *Service) ForceClose(ctx context.Context, caller uuid.UUID, saleID uint64) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale domain.Sale
		if err := tx.Where("sale_id = ?", saleID).First(&sale).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: sale %d", apperrors.ErrNotFound, saleID)
			}
			return err
		}
		if caller != sale.Provider {
			admin, err := s.Caps.Has(tx, caller, domain.CapMarketAdmin)
			if err != nil {
				return err
			}
			if !admin {
				return fmt.Errorf("%w: only the provider may close this sale", apperrors.ErrUnauthorized)
			}
		}
		if !sale.Active {
			return nil
		}

		sale.Active = false
		if err := tx.Save(&sale).Error; err != nil {
			return err
		}
		return recordEvent(tx, sale.SaleID, domain.EventForceClosed, caller, map[string]interface{}{
			"sold": sale.Sold,
		})
	})
}

// Fetch returns the sale with the given id, active or not.
func (s *Service) Fetch(ctx context.Context, saleID uint64) (*domain.Sale, error) {
	var sale domain.Sale
	if err := s.DB.WithContext(ctx).Where("sale_id = ?", saleID).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %d", apperrors.ErrNotFound, saleID)
		}
		return nil, err
	}
	return &sale, nil
}

// FetchActive returns the sales open for participation right now. Expiry is
// evaluated here, at read time: a sale past its end time is excluded even if
// nothing has written to it since it expired.
func (s *Service) FetchActive(ctx context.Context) ([]domain.Sale, error) {
	var sales []domain.Sale
	if err := s.DB.WithContext(ctx).
		Where("active = ? AND end_time > ?", true, s.now()).
		Order("sale_id ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// SetListingFee updates the flat fee charged when listing a license for
// resale. Requires the market-admin capability.
func (s *Service) SetListingFee(ctx context.Context, caller uuid.UUID, fee int64) error {
	if fee < 0 {
		return fmt.Errorf("%w: listing fee must not be negative", apperrors.ErrValidation)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := s.Caps.Has(tx, caller, domain.CapMarketAdmin)
		if err != nil {
			return err
		}
		if !admin {
			return fmt.Errorf("%w: market admin capability required", apperrors.ErrUnauthorized)
		}

		var param domain.MarketParameter
		err = tx.Where("name = ?", domain.ParamListingFee).First(&param).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&domain.MarketParameter{Name: domain.ParamListingFee, Value: fee}).Error
		}
		if err != nil {
			return err
		}
		param.Value = fee
		return tx.Save(&param).Error
	})
}

func recordEvent(tx *gorm.DB, saleID uint64, eventType string, actor uuid.UUID, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	a := actor
	return tx.Create(&domain.MarketEvent{
		Subject:   domain.SubjectSale,
		SubjectID: saleID,
		EventType: eventType,
		EventData: datatypes.JSON(data),
		Actor:     &a,
	}).Error
}
