package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Convo/internal/core"
	"github.com/dkeye/Convo/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRoomExists = errors.New("room already exists")

// RoomRepository is the room directory. It satisfies core.RoomDirectory for
// the relay and backs the REST room API.
type RoomRepository struct {
	db *gorm.DB
}

var _ core.RoomDirectory = (*RoomRepository)(nil)

func NewRoomRepository(db *gorm.DB) (*RoomRepository, error) {
	if err := db.AutoMigrate(&RoomRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate rooms: %w", err)
	}
	return &RoomRepository{db: db}, nil
}

// Create stores a new active room under a fresh room id. Names are unique
// across active and inactive rooms.
func (r *RoomRepository) Create(ctx context.Context, name string) (*domain.Room, error) {
	name, err := domain.NormalizeRoomName(name)
	if err != nil {
		return nil, err
	}

	var rec *RoomRecord
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&RoomRecord{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrRoomExists
		}
		rec = &RoomRecord{Name: name, RoomID: uuid.NewString(), Active: true}
		return tx.Create(rec).Error
	})
	if err != nil {
		if errors.Is(err, ErrRoomExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create room %q: %w", name, err)
	}
	return rec.toDomain(), nil
}

// ListActive returns active rooms in creation order.
func (r *RoomRepository) ListActive(ctx context.Context) ([]domain.Room, error) {
	var recs []RoomRecord
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *rec.toDomain())
	}
	return out, nil
}

func (r *RoomRepository) FindActiveRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var rec RoomRecord
	err := r.db.WithContext(ctx).Where("room_id = ? AND active = ?", string(id), true).First(&rec).Error
	return found(&rec, err)
}

// Get looks a room up by its numeric id, active or not.
func (r *RoomRepository) Get(ctx context.Context, id uint) (*domain.Room, error) {
	var rec RoomRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	return found(&rec, err)
}

// Deactivate soft-deletes a room. Deactivating an inactive room succeeds.
func (r *RoomRepository) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&RoomRecord{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate room %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func found(rec *RoomRecord, err error) (*domain.Room, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	return rec.toDomain(), nil
}
