package model

import "gorm.io/datatypes"

// PositionEventModel maps to the 'position_events' table.
type PositionEventModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	EventID       string         `gorm:"column:event_uuid;uniqueIndex"`
	Type          string         `gorm:"column:type;index"`
	PositionID    string         `gorm:"column:position_id;index"`
	Symbol        string         `gorm:"column:symbol;index"`
	Payload       datatypes.JSON `gorm:"column:payload"`
	CreatedAtUnix int64          `gorm:"column:created_at;index"`
}

func (PositionEventModel) TableName() string { return "position_events" }
