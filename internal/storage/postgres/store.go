// Package postgres implements catalog.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/motorcat/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolConfig carries connection pool settings.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Open connects a pool and verifies it with a ping.
func Open(ctx context.Context, url string, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded schema. It is idempotent.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Store is a catalog.Store backed by the items table.
type Store struct {
	db DBTX
}

// New returns a Store using db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

var _ catalog.Store = (*Store)(nil)

// selectColumns is the projection scanned by scanItem, in order.
const selectColumns = `id::text, COALESCE(external_uid, ''),
	brand, model, sku, mark, category,
	title, description, body, photos,
	price, price_old, price_usd, quantity,
	editions, modifications, external_id, parent_uid,
	engine_type, engine_volume, engine_power, transmission, drive_type, year,
	country_of_origin, mileage, weight, length, width, height,
	created_at, updated_at`

// writeColumns are the imported fields, bound by writeArgs in this order.
var writeColumns = []string{
	"brand", "model", "sku", "mark", "category",
	"title", "description", "body", "photos",
	"price", "price_old", "price_usd", "quantity",
	"editions", "modifications", "external_id", "parent_uid",
	"engine_type", "engine_volume", "engine_power", "transmission", "drive_type", "year",
	"country_of_origin", "mileage", "weight", "length", "width", "height",
}

func writeArgs(it *catalog.Item) []any {
	photos := it.Photos
	if photos == nil {
		photos = []string{}
	}
	var price *float64
	if amount, known := it.Price.Amount(); known {
		price = &amount
	}
	return []any{
		it.Brand, it.Model, it.SKU, it.Mark, it.Category,
		it.Title, it.Description, it.Text, photos,
		price, it.PriceOld, it.PriceUSD, it.Quantity,
		it.Editions, it.Modifications, it.ExternalID, it.ParentUID,
		it.EngineType, it.EngineVolume, it.EnginePower, it.Transmission, it.DriveType, it.Year,
		it.CountryOfOrigin, it.Mileage, it.Weight, it.Length, it.Width, it.Height,
	}
}

func scanItem(row pgx.Row) (catalog.Item, error) {
	var (
		it    catalog.Item
		price *float64
	)
	err := row.Scan(
		&it.ID, &it.ExternalUID,
		&it.Brand, &it.Model, &it.SKU, &it.Mark, &it.Category,
		&it.Title, &it.Description, &it.Text, &it.Photos,
		&price, &it.PriceOld, &it.PriceUSD, &it.Quantity,
		&it.Editions, &it.Modifications, &it.ExternalID, &it.ParentUID,
		&it.EngineType, &it.EngineVolume, &it.EnginePower, &it.Transmission, &it.DriveType, &it.Year,
		&it.CountryOfOrigin, &it.Mileage, &it.Weight, &it.Length, &it.Width, &it.Height,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return catalog.Item{}, err
	}
	it.Price = catalog.PriceFromNullable(price)
	if len(it.Photos) == 0 {
		it.Photos = nil
	}
	return it, nil
}

func (s *Store) findOne(ctx context.Context, where string, arg any) (catalog.Item, error) {
	query := fmt.Sprintf("SELECT %s FROM items WHERE %s", selectColumns, where)
	it, err := scanItem(s.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Item{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Item{}, fmt.Errorf("select item: %w", err)
	}
	return it, nil
}

// FindByUID implements catalog.Store.
func (s *Store) FindByUID(ctx context.Context, uid string) (catalog.Item, error) {
	if strings.TrimSpace(uid) == "" {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return s.findOne(ctx, "external_uid = $1", uid)
}

// FindByID implements catalog.Store. Malformed ids are not found.
func (s *Store) FindByID(ctx context.Context, id string) (catalog.Item, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return s.findOne(ctx, "id = $1::uuid", parsed.String())
}

// Insert implements catalog.Store.
func (s *Store) Insert(ctx context.Context, item *catalog.Item) error {
	id := uuid.NewString()

	cols := append([]string{"id", "external_uid"}, writeColumns...)
	args := append([]any{id, nullIfBlank(item.ExternalUID)}, writeArgs(item)...)
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	placeholders[0] = "$1::uuid"

	query := fmt.Sprintf(
		"INSERT INTO items (%s) VALUES (%s) RETURNING created_at, updated_at",
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)

	var created, updated time.Time
	if err := s.db.QueryRow(ctx, query, args...).Scan(&created, &updated); err != nil {
		return translateWriteError(item.ExternalUID, err)
	}

	item.ID = id
	item.CreatedAt = created
	item.UpdatedAt = updated
	return nil
}

// UpdateByUID implements catalog.Store.
func (s *Store) UpdateByUID(ctx context.Context, uid string, item *catalog.Item) error {
	if strings.TrimSpace(uid) == "" {
		return catalog.ErrNotFound
	}

	args := writeArgs(item)
	sets := make([]string, len(writeColumns))
	for i, col := range writeColumns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, uid)

	query := fmt.Sprintf(
		"UPDATE items SET %s, updated_at = now() WHERE external_uid = $%d RETURNING id::text, created_at, updated_at",
		strings.Join(sets, ", "),
		len(args),
	)

	var id string
	var created, updated time.Time
	err := s.db.QueryRow(ctx, query, args...).Scan(&id, &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrNotFound
	}
	if err != nil {
		return translateWriteError(uid, err)
	}

	item.ID = id
	item.ExternalUID = uid
	item.CreatedAt = created
	item.UpdatedAt = updated
	return nil
}

// FindMany implements catalog.Store.
func (s *Store) FindMany(ctx context.Context, p catalog.Predicate, page catalog.Page) ([]catalog.Item, error) {
	var b whereBuilder
	where, err := b.expr(p)
	if err != nil {
		return nil, fmt.Errorf("translate predicate: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM items WHERE %s ORDER BY %s", selectColumns, where, orderBy(page.Sort))
	if page.Limit > 0 {
		query += " LIMIT " + b.bind(page.Limit)
	}
	if page.Offset > 0 {
		query += " OFFSET " + b.bind(page.Offset)
	}

	rows, err := s.db.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Item, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	if items == nil {
		items = []catalog.Item{}
	}
	return items, nil
}

// Count implements catalog.Store.
func (s *Store) Count(ctx context.Context, p catalog.Predicate) (int64, error) {
	where, args, err := Translate(p)
	if err != nil {
		return 0, fmt.Errorf("translate predicate: %w", err)
	}

	var n int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM items WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Distinct implements catalog.Store.
func (s *Store) Distinct(ctx context.Context, f catalog.Field, p catalog.Predicate) ([]string, error) {
	col, ok := columns[f]
	if !ok || !stringFields[f] {
		return nil, fmt.Errorf("distinct on %q is not supported", f)
	}
	where, args, err := Translate(p)
	if err != nil {
		return nil, fmt.Errorf("translate predicate: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT DISTINCT btrim(%[1]s) AS v FROM items WHERE %[2]s AND btrim(%[1]s) <> '' ORDER BY v",
		col, where,
	)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", col, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan distinct %s: %w", col, err)
	}
	return values, nil
}

// Delete implements catalog.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return catalog.ErrNotFound
	}
	tag, err := s.db.Exec(ctx, "DELETE FROM items WHERE id = $1::uuid", parsed.String())
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DeleteMany implements catalog.Store. Malformed and unknown ids are skipped.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(id); err == nil {
			valid = append(valid, parsed.String())
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	tag, err := s.db.Exec(ctx, "DELETE FROM items WHERE id = ANY($1::text[]::uuid[])", valid)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAll implements catalog.Store.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM items")
	if err != nil {
		return 0, fmt.Errorf("delete all items: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullIfBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// translateWriteError maps a unique violation on the natural key to
// catalog.ErrDuplicateKey and wraps everything else.
func translateWriteError(uid string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("external_uid %q (%s): %w", uid, pgErr.ConstraintName, catalog.ErrDuplicateKey)
	}
	return fmt.Errorf("write item %q: %w", uid, err)
}
