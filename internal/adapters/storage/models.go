package storage

import (
	"time"

	"github.com/dkeye/Convo/internal/domain"
)

// RoomRecord is the persisted form of a room. Rows are never deleted; a
// deactivated room stays inactive.
type RoomRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	RoomID    string    `gorm:"type:varchar(36);uniqueIndex;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RoomRecord) TableName() string {
	return "rooms"
}

func (r RoomRecord) toDomain() *domain.Room {
	return &domain.Room{
		ID:     r.ID,
		Name:   r.Name,
		RoomID: domain.RoomID(r.RoomID),
		Active: r.Active,
	}
}
