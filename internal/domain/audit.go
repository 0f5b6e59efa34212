package domain

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEntry struct {
	ID         int64          `json:"id" gorm:"primaryKey"`
	Action     string         `json:"action" gorm:"size:64;not null;index"`
	EntityType string         `json:"entity_type" gorm:"size:32;not null"`
	EntityID   int64          `json:"entity_id" gorm:"index"`
	ActorID    int64          `json:"actor_id"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
