package postgres

import (
	"context"
	"database/sql"

	"github.com/toolsinn/shortlinks/internal/entity"
)

type ClickRepository struct {
	db *sql.DB
}

func NewClickRepository(db *sql.DB) ClickRepositoryInterface {
	return &ClickRepository{db: db}
}

// Record appends one click event. Events are write-once; a duplicate
// delivery simply lands as an extra row and is absorbed by reconciliation.
func (r *ClickRepository) Record(ctx context.Context, click *entity.ClickEvent) error {
	query := `INSERT INTO clicks (id, code, device_type, user_agent, ip_address, referer, platform_hint, country, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		click.ID, click.Code, click.DeviceType, click.UserAgent, click.IPAddress,
		click.Referer, click.PlatformHint, click.Country, click.Timestamp)
	return err
}

func (r *ClickRepository) ListRecent(ctx context.Context, code string, limit int) ([]entity.ClickEvent, error) {
	query := `SELECT id, code, device_type, user_agent, ip_address, referer, platform_hint, country, timestamp
		FROM clicks WHERE code = $1 ORDER BY timestamp DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, code, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []entity.ClickEvent
	for rows.Next() {
		var click entity.ClickEvent
		err := rows.Scan(&click.ID, &click.Code, &click.DeviceType, &click.UserAgent,
			&click.IPAddress, &click.Referer, &click.PlatformHint, &click.Country, &click.Timestamp)
		if err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

func (r *ClickRepository) ListAll(ctx context.Context, code string) ([]entity.ClickEvent, error) {
	query := `SELECT id, code, device_type, user_agent, ip_address, referer, platform_hint, country, timestamp
		FROM clicks WHERE code = $1 ORDER BY timestamp DESC`
	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []entity.ClickEvent
	for rows.Next() {
		var click entity.ClickEvent
		err := rows.Scan(&click.ID, &click.Code, &click.DeviceType, &click.UserAgent,
			&click.IPAddress, &click.Referer, &click.PlatformHint, &click.Country, &click.Timestamp)
		if err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

func (r *ClickRepository) CountByCode(ctx context.Context, code string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clicks WHERE code = $1`, code).Scan(&count)
	return count, err
}

func (r *ClickRepository) CountByDevice(ctx context.Context, code string) ([]entity.DeviceStat, error) {
	query := `
        SELECT device_type, COUNT(*) as clicks
        FROM clicks
        WHERE code = $1
        GROUP BY device_type
        ORDER BY clicks DESC
    `
	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []entity.DeviceStat
	for rows.Next() {
		var stat entity.DeviceStat
		if err := rows.Scan(&stat.DeviceType, &stat.Clicks); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
