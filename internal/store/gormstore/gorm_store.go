package gormstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ladder/internal/store"
	storemodel "ladder/internal/store/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type eventModel = storemodel.PositionEventModel

// GormStore implements store.EventStore on Gorm + SQLite.
type GormStore struct {
	db *gorm.DB
}

var _ store.EventStore = (*GormStore)(nil)

func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm store: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&eventModel{}); err != nil {
		return nil, fmt.Errorf("gorm store: migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: one writer (the trader actor) plus HTTP reads.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Append(ctx context.Context, rec store.EventRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store not initialized")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	payload := datatypes.JSON(rec.Payload)
	if len(payload) == 0 {
		payload = datatypes.JSON("{}")
	}
	model := eventModel{
		EventID:       rec.ID,
		Type:          rec.Type,
		PositionID:    rec.PositionID,
		Symbol:        strings.ToUpper(strings.TrimSpace(rec.Symbol)),
		Payload:       payload,
		CreatedAtUnix: rec.CreatedAt.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

func (s *GormStore) List(ctx context.Context, positionID string, limit int) ([]store.EventRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store not initialized")
	}
	var models []eventModel
	query := s.db.WithContext(ctx).Order("id DESC").Limit(store.ClampLimit(limit))
	if id := strings.TrimSpace(positionID); id != "" {
		query = query.Where("position_id = ?", id)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.EventRecord, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		m := models[i]
		out = append(out, store.EventRecord{
			ID:         m.EventID,
			Type:       m.Type,
			PositionID: m.PositionID,
			Symbol:     m.Symbol,
			Payload:    []byte(m.Payload),
			CreatedAt:  time.UnixMilli(m.CreatedAtUnix),
		})
	}
	return out, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
