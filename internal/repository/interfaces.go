package repository

import (
	"cinemaguard/internal/model"
)

// HallRepository defines the interface for hall and grid-config operations.
type HallRepository interface {
	GetByName(name string) (*model.Hall, error)
	SaveGridConfig(hallName string, cfg *model.GridConfig) error
	GetGridConfig(hallName string) (*model.GridConfig, error)
}

// AlertRepository defines the interface for alert persistence.
type AlertRepository interface {
	Insert(event *model.AlertEvent) error
	GetRecent(hallName string, limit int) ([]model.AlertEvent, error)
	DeleteOlderThan(days int) (int64, error)
}

// SnapshotRepository defines the interface for alert evidence frames.
type SnapshotRepository interface {
	Insert(snap *model.Snapshot) (int64, error)
	GetRecent(limit int) ([]model.Snapshot, error)
	Delete(id int64) error
}
