package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"cinemaguard/internal/model"
)

// HallRepository implements repository.HallRepository for SQLite.
type HallRepository struct {
	db *DB
}

// NewHallRepository creates a new SQLite hall repository.
func NewHallRepository(db *DB) *HallRepository {
	return &HallRepository{db: db}
}

// GetByName retrieves a hall by its name, or nil when it does not exist.
func (r *HallRepository) GetByName(name string) (*model.Hall, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var hall model.Hall
	var gridJSON sql.NullString
	err := r.db.Conn().QueryRow(`
		SELECT id, name, grid_config, created_at FROM halls WHERE name = ?
	`, name).Scan(&hall.ID, &hall.Name, &gridJSON, &hall.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query hall: %w", err)
	}

	if gridJSON.Valid && gridJSON.String != "" {
		var cfg model.GridConfig
		if err := json.Unmarshal([]byte(gridJSON.String), &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode grid config: %w", err)
		}
		hall.GridConfig = &cfg
	}

	return &hall, nil
}

// SaveGridConfig stores the grid configuration for a hall, creating the hall
// record when needed.
func (r *HallRepository) SaveGridConfig(hallName string, cfg *model.GridConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode grid config: %w", err)
	}

	r.db.Lock()
	defer r.db.Unlock()

	_, err = r.db.Conn().Exec(`
		INSERT INTO halls (name, grid_config) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET grid_config = excluded.grid_config
	`, hallName, string(data))
	if err != nil {
		return fmt.Errorf("failed to save grid config: %w", err)
	}
	return nil
}

// GetGridConfig returns the stored grid configuration for a hall, or nil
// when the hall has none.
func (r *HallRepository) GetGridConfig(hallName string) (*model.GridConfig, error) {
	hall, err := r.GetByName(hallName)
	if err != nil {
		return nil, err
	}
	if hall == nil {
		return nil, nil
	}
	return hall.GridConfig, nil
}
