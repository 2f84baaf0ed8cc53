package storage

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteStorage owns the database handle behind the room directory.
type SQLiteStorage struct {
	db    *gorm.DB
	rooms *RoomRepository
}

// NewSQLiteStorage opens (or creates) the database at path and migrates the
// schema. ":memory:" gives a private in-process database.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	rooms, err := NewRoomRepository(db)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "storage").Str("path", path).Msg("sqlite database opened")

	return &SQLiteStorage{db: db, rooms: rooms}, nil
}

func (s *SQLiteStorage) DB() *gorm.DB {
	return s.db
}

func (s *SQLiteStorage) Rooms() *RoomRepository {
	return s.rooms
}

func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Info().Str("module", "storage").Msg("sqlite database closed")
	return nil
}
