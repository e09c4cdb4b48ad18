package docstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// document is one collection's JSON array stored as a single row.
type document struct {
	Collection string         `gorm:"primaryKey;size:64"`
	Data       datatypes.JSON `gorm:"not null"`
	UpdatedAt  time.Time
}

func (document) TableName() string { return "documents" }

// GormBackend stores whole collection documents in a relational table, one
// row per collection. The contract stays identical to the file backend:
// last write of the row wins.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) Read(ctx context.Context, collection string) ([]byte, error) {
	var doc document
	err := b.db.WithContext(ctx).First(&doc, "collection = ?", collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Data), nil
}

func (b *GormBackend) Write(ctx context.Context, collection string, data []byte) error {
	doc := document{Collection: collection, Data: datatypes.JSON(data), UpdatedAt: time.Now()}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&doc).Error
}
