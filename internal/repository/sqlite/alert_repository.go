package sqlite

import (
	"database/sql"
	"fmt"

	"cinemaguard/internal/model"
)

// AlertRepository implements repository.AlertRepository for SQLite.
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new SQLite alert repository.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert adds a new alert record, creating the hall row when it does not
// exist yet.
func (r *AlertRepository) Insert(event *model.AlertEvent) error {
	r.db.Lock()
	defer r.db.Unlock()

	hallID, err := ensureHall(r.db.Conn(), event.Hall)
	if err != nil {
		return err
	}

	_, err = r.db.Conn().Exec(`
		INSERT INTO alerts (id, hall_id, zone, risk_score, x1, y1, x2, y2, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, hallID, event.Zone, event.RiskScore,
		event.Box.X1, event.Box.Y1, event.Box.X2, event.Box.Y2, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetRecent retrieves the newest alerts for a hall, most recent first.
func (r *AlertRepository) GetRecent(hallName string, limit int) ([]model.AlertEvent, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT a.id, h.name, a.zone, a.risk_score, a.x1, a.y1, a.x2, a.y2, a.timestamp
		FROM alerts a
		JOIN halls h ON h.id = a.hall_id
		WHERE h.name = ?
		ORDER BY a.timestamp DESC
		LIMIT ?
	`, hallName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.AlertEvent
	for rows.Next() {
		var ev model.AlertEvent
		if err := rows.Scan(&ev.ID, &ev.Hall, &ev.Zone, &ev.RiskScore,
			&ev.Box.X1, &ev.Box.Y1, &ev.Box.X2, &ev.Box.Y2, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, ev)
	}

	return alerts, rows.Err()
}

// DeleteOlderThan removes alerts older than the given number of days and
// returns how many rows were deleted.
func (r *AlertRepository) DeleteOlderThan(days int) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		DELETE FROM alerts WHERE timestamp < datetime('now', ?)
	`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, fmt.Errorf("failed to delete alerts: %w", err)
	}
	return result.RowsAffected()
}

// ensureHall returns the hall id for name, inserting the row when missing.
// Caller must hold the write lock.
func ensureHall(conn *sql.DB, name string) (int64, error) {
	var id int64
	err := conn.QueryRow(`SELECT id FROM halls WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query hall id: %w", err)
	}

	result, err := conn.Exec(`INSERT INTO halls (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create hall: %w", err)
	}
	return result.LastInsertId()
}
