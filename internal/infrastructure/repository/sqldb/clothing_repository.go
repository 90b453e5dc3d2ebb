package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

const clothingColumns = `id, owner_id, image_locator, content_digest, category, style_tag, confidence, created_at, weight`

type ClothingRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func NewClothingRepository(db *sqlx.DB, driver string) (*ClothingRepository, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &ClothingRepository{db: db, dialect: d}, nil
}

type clothingRow struct {
	ID            int64          `db:"id"`
	OwnerID       string         `db:"owner_id"`
	ImageLocator  string         `db:"image_locator"`
	ContentDigest string         `db:"content_digest"`
	Category      string         `db:"category"`
	StyleTag      sql.NullString `db:"style_tag"`
	Confidence    float64        `db:"confidence"`
	CreatedAt     time.Time      `db:"created_at"`
	Weight        float64        `db:"weight"`
}

func (r clothingRow) toDomain() domain.ClothingRecord {
	return domain.ClothingRecord{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		ImageLocator:  r.ImageLocator,
		ContentDigest: r.ContentDigest,
		Category:      r.Category,
		StyleTag:      r.StyleTag.String,
		Confidence:    r.Confidence,
		CreatedAt:     r.CreatedAt,
		Weight:        r.Weight,
	}
}

// InsertIfAbsent inserts in one statement guarded by the content_digest unique
// constraint. When the digest already exists (including a concurrent insert
// that committed first) no row is returned and the existing id is looked up.
func (r *ClothingRepository) InsertIfAbsent(ctx context.Context, item domain.NewClothing) (int64, bool, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `
INSERT INTO clothes (owner_id, image_locator, content_digest, category, style_tag, confidence, created_at, weight)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1.0)
ON CONFLICT (content_digest) DO NOTHING
RETURNING id
`, item.OwnerID, item.ImageLocator, item.ContentDigest, item.Category, nullableString(item.StyleTag), item.Confidence, item.CreatedAt)
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		existingID, lookupErr := r.idByDigest(ctx, item.ContentDigest)
		if lookupErr != nil {
			return 0, false, lookupErr
		}
		return existingID, false, nil
	default:
		return 0, false, fmt.Errorf("insert clothing: %w", err)
	}
}

func (r *ClothingRepository) idByDigest(ctx context.Context, digest string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM clothes WHERE content_digest = $1`, digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.WrapError(domain.ErrClothingNotFound, "lookup clothing by digest", fmt.Errorf("digest=%s", digest))
		}
		return 0, fmt.Errorf("lookup clothing by digest: %w", err)
	}
	return id, nil
}

func (r *ClothingRepository) GetByID(ctx context.Context, id int64) (*domain.ClothingRecord, error) {
	var row clothingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+clothingColumns+` FROM clothes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrClothingNotFound, "get clothing", fmt.Errorf("id=%d", id))
		}
		return nil, fmt.Errorf("scan clothing: %w", err)
	}
	record := row.toDomain()
	return &record, nil
}

// QueryByOwner returns the owner's records ordered by weight, heaviest first,
// with ties in insertion order. A non-empty styleFilter keeps records whose
// style tag contains it, case-sensitively.
func (r *ClothingRepository) QueryByOwner(ctx context.Context, ownerID, styleFilter string, limit int) ([]domain.ClothingRecord, error) {
	query := `
SELECT ` + clothingColumns + `
FROM clothes
WHERE owner_id = $1
`
	args := []any{ownerID}
	if styleFilter != "" {
		args = append(args, styleFilter)
		query += "AND " + r.dialect.substring + "(style_tag, $" + strconv.Itoa(len(args)) + ") > 0\n"
	}
	args = append(args, limit)
	query += "ORDER BY weight DESC, id ASC\nLIMIT $" + strconv.Itoa(len(args))

	var rows []clothingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query clothes by owner: %w", err)
	}

	out := make([]domain.ClothingRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// AddWeight applies delta with an in-place update so concurrent
// reinforcements on one record never overwrite each other.
func (r *ClothingRepository) AddWeight(ctx context.Context, id int64, delta float64) (domain.ReinforceOutcome, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE clothes
SET weight = weight + $1
WHERE id = $2
`, delta, id)
	if err != nil {
		return "", fmt.Errorf("update clothing weight: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("update clothing weight rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ReinforceNotFound, nil
	}
	return domain.ReinforceApplied, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
