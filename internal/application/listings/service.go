// Package listings implements the secondary-market manager: holders resell
// license balance they own, with a basis-point royalty cut routed back to
// the original provider's escrow balance on every purchase.
package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

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

// Service is the listing manager. Principal is both its identity (value-token
// spender, escrow-deposit caller) and the custody account that holds listed
// license units until they are purchased or the listing is cancelled.
type Service struct {
	DB        *gorm.DB
	Token     token.Ledger
	Registry  registry.Registry
	Escrow    *escrow.Service
	Caps      *capability.Checker
	Principal uuid.UUID
	Treasury  uuid.UUID

	// Mu is the marketplace-wide mutation lock, shared with the sale
	// manager and the escrow ledger.
	Mu *sync.Mutex
}

// ListLicenseInput carries the seller's resale terms.
type ListLicenseInput struct {
	TokenID   uint64
	UnitPrice int64
	Amount    int64
}

// List puts amount units of the seller's license balance up for resale. The
// current listing fee is transferred to the treasury first (FeeNotPaid if the
// seller's allowance or balance cannot cover it), then the listed units move
// into market custody so the same balance cannot be listed twice.
func (s *Service) List(ctx context.Context, seller uuid.UUID, in ListLicenseInput) (*domain.Listing, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if in.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unit price must not be negative", apperrors.ErrValidation)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	var listing *domain.Listing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fee, err := s.listingFee(tx)
		if err != nil {
			return err
		}
		if fee > 0 {
			if err := s.Token.TransferFrom(tx, seller, s.Principal, s.Treasury, fee); err != nil {
				if errors.Is(err, apperrors.ErrInsufficientFunds) {
					return apperrors.ErrFeeNotPaid
				}
				return err
			}
		}

		held, err := s.Registry.BalanceOf(tx, in.TokenID, seller)
		if err != nil {
			return err
		}
		if held < in.Amount {
			return apperrors.ErrInsufficientBalance
		}
		if err := s.Registry.Transfer(tx, in.TokenID, seller, s.Principal, in.Amount); err != nil {
			return err
		}

		listing = &domain.Listing{
			TokenID:   in.TokenID,
			Seller:    seller,
			UnitPrice: in.UnitPrice,
			Remaining: in.Amount,
			Active:    true,
		}
		if err := tx.Create(listing).Error; err != nil {
			return err
		}

		if fee > 0 {
			from := seller
			to := s.Treasury
			lid := listing.ListingID
			if err := tx.Create(&domain.Transaction{
				Type:        domain.TxListingFee,
				FromAccount: &from,
				ToAccount:   &to,
				Amount:      fee,
				ListingID:   &lid,
			}).Error; err != nil {
				return err
			}
		}

		return recordEvent(tx, listing.ListingID, domain.EventListed, seller, map[string]interface{}{
			"token_id":   in.TokenID,
			"unit_price": in.UnitPrice,
			"amount":     in.Amount,
			"fee":        fee,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("listing_id", listing.ListingID).Uint64("token_id", in.TokenID).
		Str("seller", seller.String()).Int64("amount", in.Amount).Msg("license listed")
	return listing, nil
}

// Purchase buys amount units from a listing. Cost splits exactly between the
// royalty beneficiary and the seller (royaltyCut = cost*bps/10000, integer
// division truncating toward zero), both credited in escrow; the units move
// from market custody to the buyer. Draining the listing deactivates it.
func (s *Service) Purchase(ctx context.Context, buyer uuid.UUID, listingID uint64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.Listing
		if err := tx.Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: listing %d", apperrors.ErrNotFound, listingID)
			}
			return err
		}
		if !listing.Active {
			return apperrors.ErrSaleInactive
		}
		if amount > listing.Remaining {
			return apperrors.ErrSupplyExceeded
		}

		beneficiary, bps, err := s.Registry.Royalty(tx, listing.TokenID)
		if err != nil {
			return err
		}

		cost, ok := domain.TotalCost(amount, listing.UnitPrice)
		if !ok {
			return fmt.Errorf("%w: cost exceeds the representable range", apperrors.ErrValidation)
		}
		royaltyCut, sellerCut := domain.RoyaltySplit(cost, bps)

		if cost > 0 {
			if err := s.Token.TransferFrom(tx, buyer, s.Principal, s.Escrow.Account, cost); err != nil {
				return err
			}
		}
		if royaltyCut > 0 {
			if err := s.Escrow.DepositTx(tx, s.Principal, beneficiary, royaltyCut); err != nil {
				return err
			}
		}
		if sellerCut > 0 {
			if err := s.Escrow.DepositTx(tx, s.Principal, listing.Seller, sellerCut); err != nil {
				return err
			}
		}
		if err := s.Registry.Transfer(tx, listing.TokenID, s.Principal, buyer, amount); err != nil {
			return err
		}

		listing.Remaining -= amount
		if listing.Remaining == 0 {
			listing.Active = false
		}
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}

		tid := listing.TokenID
		lid := listing.ListingID
		if sellerCut > 0 {
			from := buyer
			to := listing.Seller
			if err := tx.Create(&domain.Transaction{
				Type:        domain.TxPurchase,
				FromAccount: &from,
				ToAccount:   &to,
				Amount:      sellerCut,
				TokenID:     &tid,
				ListingID:   &lid,
			}).Error; err != nil {
				return err
			}
		}
		if royaltyCut > 0 {
			from := buyer
			to := beneficiary
			if err := tx.Create(&domain.Transaction{
				Type:        domain.TxRoyalty,
				FromAccount: &from,
				ToAccount:   &to,
				Amount:      royaltyCut,
				TokenID:     &tid,
				ListingID:   &lid,
			}).Error; err != nil {
				return err
			}
		}

		return recordEvent(tx, listing.ListingID, domain.EventPurchased, buyer, map[string]interface{}{
			"amount":      amount,
			"cost":        cost,
			"royalty_cut": royaltyCut,
			"seller_cut":  sellerCut,
			"remaining":   listing.Remaining,
			"active":      listing.Active,
		})
	})
	if err != nil {
		return err
	}

	log.Info().Uint64("listing_id", listingID).Str("buyer", buyer.String()).
		Int64("amount", amount).Msg("license purchased")
	return nil
}

// Cancel closes a listing early and returns the unsold units from market
// custody to the seller. Only the seller or a market admin may cancel; a
// listing that is already inactive cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, caller uuid.UUID, listingID uint64) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.Listing
		if err := tx.Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: listing %d", apperrors.ErrNotFound, listingID)
			}
			return err
		}
		if caller != listing.Seller {
			admin, err := s.Caps.Has(tx, caller, domain.CapMarketAdmin)
			if err != nil {
				return err
			}
			if !admin {
				return fmt.Errorf("%w: only the seller may cancel this listing", apperrors.ErrUnauthorized)
			}
		}
		if !listing.Active {
			return apperrors.ErrSaleInactive
		}

		returned := listing.Remaining
		if returned > 0 {
			if err := s.Registry.Transfer(tx, listing.TokenID, s.Principal, listing.Seller, returned); err != nil {
				return err
			}
		}
		listing.Remaining = 0
		listing.Active = false
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}

		return recordEvent(tx, listing.ListingID, domain.EventCancelled, caller, map[string]interface{}{
			"returned": returned,
		})
	})
}

// Fetch returns the listing with the given id, active or not.
func (s *Service) Fetch(ctx context.Context, listingID uint64) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: listing %d", apperrors.ErrNotFound, listingID)
		}
		return nil, err
	}
	return &listing, nil
}

// FetchListed returns all listings still open for purchase.
func (s *Service) FetchListed(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("listing_id ASC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// ListingFee returns the current flat listing fee.
func (s *Service) ListingFee(ctx context.Context) (int64, error) {
	return s.listingFee(s.DB.WithContext(ctx))
}

func (s *Service) listingFee(tx *gorm.DB) (int64, error) {
	var param domain.MarketParameter
	if err := tx.Where("name = ?", domain.ParamListingFee).First(&param).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return param.Value, nil
}

func recordEvent(tx *gorm.DB, listingID uint64, eventType string, actor uuid.UUID, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	a := actor
	return tx.Create(&domain.MarketEvent{
		Subject:   domain.SubjectListing,
		SubjectID: listingID,
		EventType: eventType,
		EventData: datatypes.JSON(data),
		Actor:     &a,
	}).Error
}
