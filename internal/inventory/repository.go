package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository reads inventory documents stored as JSONB in PostgreSQL.
type Repository struct {
	db dbtx
}

// NewRepository constructs Repository over a pool or transaction.
func NewRepository(db dbtx) *Repository {
	return &Repository{db: db}
}

const selectInventory = `SELECT id, payload FROM inventories`

// Get loads one record by id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	var (
		rowID   string
		payload []byte
	)
	err := r.db.QueryRow(ctx, selectInventory+` WHERE id = $1`, id).Scan(&rowID, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("inventory: get %s: %w", id, err)
	}
	return decodeRecord(rowID, payload)
}

// List returns records matching filter ordered by space name.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Record, error) {
	query, args := buildListQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(id, payload)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func buildListQuery(filter Filter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.City != "" {
		args = append(args, filter.City)
		conditions = append(conditions, fmt.Sprintf("COALESCE(payload->'location'->>'city', payload->>'city') ILIKE $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("payload->'basicInformation'->>'spaceName' ILIKE $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(selectInventory)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY payload->'basicInformation'->>'spaceName', id")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args
}

func decodeRecord(id string, payload []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("inventory: decode %s: %w", id, err)
	}
	rec.ID = id
	return rec, nil
}
