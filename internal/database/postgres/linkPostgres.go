package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/toolsinn/shortlinks/internal/entity"

	_ "github.com/lib/pq"
)

type LinkRepository struct {
	db *sql.DB
}

func NewLinkRepository(db *sql.DB) LinkRepositoryInterface {
	return &LinkRepository{db: db}
}

// Create inserts conditionally: ON CONFLICT DO NOTHING plus a rows-affected
// check closes the race between the uniqueness lookup and the insert, so two
// concurrent creations of the same code cannot both succeed.
func (r *LinkRepository) Create(ctx context.Context, link *entity.ShortLink) error {
	query := `INSERT INTO links (code, desktop_url, android_url, ios_url, created_at, clicks)
		VALUES ($1, $2, $3, $4, $5, 0)
		ON CONFLICT (code) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query,
		link.Code, link.Destinations.Desktop, link.Destinations.Android, link.Destinations.IOS, link.CreatedAt)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrCodeExists
	}
	return nil
}

func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*entity.ShortLink, error) {
	var link entity.ShortLink
	query := `SELECT code, desktop_url, android_url, ios_url, created_at, clicks FROM links WHERE code = $1`
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&link.Code, &link.Destinations.Desktop, &link.Destinations.Android, &link.Destinations.IOS,
		&link.CreatedAt, &link.Clicks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *LinkRepository) ListRecent(ctx context.Context, limit int) ([]entity.ShortLink, error) {
	query := `SELECT code, desktop_url, android_url, ios_url, created_at, clicks FROM links
		ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []entity.ShortLink
	for rows.Next() {
		var link entity.ShortLink
		err := rows.Scan(&link.Code, &link.Destinations.Desktop, &link.Destinations.Android,
			&link.Destinations.IOS, &link.CreatedAt, &link.Clicks)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

func (r *LinkRepository) ListCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code FROM links`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

// IncrementClicks is a commutative counter update, safe under concurrent
// clicks on the same code.
func (r *LinkRepository) IncrementClicks(ctx context.Context, code string) error {
	query := `UPDATE links SET clicks = clicks + 1 WHERE code = $1`
	_, err := r.db.ExecContext(ctx, query, code)
	return err
}

func (r *LinkRepository) SetClicks(ctx context.Context, code string, clicks int) error {
	query := `UPDATE links SET clicks = $2 WHERE code = $1`
	_, err := r.db.ExecContext(ctx, query, code, clicks)
	return err
}
