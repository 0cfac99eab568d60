package marketevents

import (
	"context"
	"testing"
	"time"

	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupEventsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.MarketEvent{}))
	return &Service{DB: db}, db
}

func event(subject string, subjectID uint64, eventType string, at time.Time) *domain.MarketEvent {
	actor := uuid.New()
	return &domain.MarketEvent{
		Subject:   subject,
		SubjectID: subjectID,
		EventType: eventType,
		EventData: datatypes.JSON([]byte(`{}`)),
		Actor:     &actor,
		CreatedAt: at,
	}
}

func TestViewSubjectEvents_FiltersAndOrders(t *testing.T) {
	svc, db := setupEventsTest(t)
	now := time.Now()

	require.NoError(t, db.Create(event(domain.SubjectSale, 1, domain.EventParticipated, now)).Error)
	require.NoError(t, db.Create(event(domain.SubjectSale, 1, domain.EventCreated, now.Add(-time.Hour))).Error)
	require.NoError(t, db.Create(event(domain.SubjectSale, 2, domain.EventCreated, now)).Error)
	require.NoError(t, db.Create(event(domain.SubjectListing, 1, domain.EventListed, now)).Error)

	events, err := svc.ViewSubjectEvents(context.Background(), domain.SubjectSale, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventCreated, events[0].EventType)
	assert.Equal(t, domain.EventParticipated, events[1].EventType)
}

func TestViewSubjectEvents_UnknownSubject(t *testing.T) {
	svc, _ := setupEventsTest(t)

	_, err := svc.ViewSubjectEvents(context.Background(), "order", 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestViewSubjectEvents_EmptyTrail(t *testing.T) {
	svc, _ := setupEventsTest(t)

	events, err := svc.ViewSubjectEvents(context.Background(), domain.SubjectListing, 99)
	require.NoError(t, err)
	assert.Empty(t, events)
}
