package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Market event subjects and types.
const (
	SubjectSale    = "sale"
	SubjectListing = "listing"

	EventCreated      = "CREATED"
	EventParticipated = "PARTICIPATED"
	EventForceClosed  = "FORCE_CLOSED"
	EventListed       = "LISTED"
	EventPurchased    = "PURCHASED"
	EventCancelled    = "CANCELLED"
)

// MarketEvent is an audit row for a sale or listing state transition.
type MarketEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	Subject   string         `gorm:"column:subject;type:varchar(10);not null;index:idx_subject" json:"subject"`
	SubjectID uint64         `gorm:"column:subject_id;not null;index:idx_subject" json:"subject_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;not null" json:"event_data"`
	Actor     *uuid.UUID     `gorm:"column:actor;type:uuid;index" json:"actor"`
	CreatedAt time.Time      `json:"created_at"`
}

func (MarketEvent) TableName() string {
	return "MarketEvents"
}

func (e *MarketEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
