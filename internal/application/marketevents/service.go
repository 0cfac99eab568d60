// Package marketevents exposes the audit trail of sale and listing state
// transitions.
package marketevents

import (
	"context"
	"fmt"

	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ViewSubjectEvents returns the events for one sale or listing, oldest first.
func (s *Service) ViewSubjectEvents(ctx context.Context, subject string, subjectID uint64) ([]domain.MarketEvent, error) {
	if subject != domain.SubjectSale && subject != domain.SubjectListing {
		return nil, fmt.Errorf("%w: unknown subject %q", apperrors.ErrValidation, subject)
	}
	var events []domain.MarketEvent
	if err := s.DB.WithContext(ctx).
		Where("subject = ? AND subject_id = ?", subject, subjectID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
