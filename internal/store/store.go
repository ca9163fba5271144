package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Table names a table and its integer primary key column.
// Names come from the resource catalog, never from request input.
type Table struct {
	Name string
	Key  string
}

// Record is one row keyed by column name.
type Record map[string]interface{}

type Store struct {
	db *sqlx.DB
}

// Tx is a transaction scoped to a single WithTx call
type Tx struct {
	tx *sqlx.Tx
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// New wraps an existing connection
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside one transaction. Any error from fn rolls the
// transaction back; otherwise it is committed.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}
	return nil
}

// Insert inserts one row and returns the key assigned by the database
func (s *Store) Insert(ctx context.Context, t Table, columns []string, values []interface{}) (int64, error) {
	return insert(ctx, s.db, t, columns, values)
}

// Insert inserts one row inside the transaction
func (t *Tx) Insert(ctx context.Context, table Table, columns []string, values []interface{}) (int64, error) {
	return insert(ctx, t.tx, table, columns, values)
}

// Exists reports whether a row with the given key exists
func (s *Store) Exists(ctx context.Context, t Table, id int64) (bool, error) {
	return exists(ctx, s.db, t, id)
}

// Exists reports whether a row exists, as seen by the transaction
func (t *Tx) Exists(ctx context.Context, table Table, id int64) (bool, error) {
	return exists(ctx, t.tx, table, id)
}

// DeleteByID deletes the row with the given key and returns the number of rows removed
func (s *Store) DeleteByID(ctx context.Context, t Table, id int64) (int64, error) {
	return deleteByID(ctx, s.db, t, id)
}

// DeleteByID deletes a row inside the transaction
func (t *Tx) DeleteByID(ctx context.Context, table Table, id int64) (int64, error) {
	return deleteByID(ctx, t.tx, table, id)
}

// ListAll returns every row of the table ordered by key
func (s *Store) ListAll(ctx context.Context, t Table) ([]Record, error) {
	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY %s", t.Name, t.Key))
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	for rows.Next() {
		row := make(map[string]interface{}, len(types))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.Name, err)
		}
		normalize(row, types)
		records = append(records, row)
	}

	return records, rows.Err()
}

func insert(ctx context.Context, q sqlx.ExtContext, t Table, columns []string, values []interface{}) (int64, error) {
	if len(columns) != len(values) {
		return 0, fmt.Errorf("insert into %s: %d columns but %d values", t.Name, len(columns), len(values))
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "), t.Key)

	var id int64
	if err := sqlx.GetContext(ctx, q, &id, query, values...); err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

func exists(ctx context.Context, q sqlx.ExtContext, t Table, id int64) (bool, error) {
	var found bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)", t.Name, t.Key)
	if err := sqlx.GetContext(ctx, q, &found, query, id); err != nil {
		return false, translateError(err)
	}
	return found, nil
}

func deleteByID(ctx context.Context, q sqlx.ExtContext, t Table, id int64) (int64, error) {
	res, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Name, t.Key), id)
	if err != nil {
		return 0, translateError(err)
	}
	return res.RowsAffected()
}

// normalize turns driver byte slices into JSON-friendly values:
// NUMERIC columns become float64, everything else a string.
func normalize(row map[string]interface{}, types []*sql.ColumnType) {
	for _, ct := range types {
		b, ok := row[ct.Name()].([]byte)
		if !ok {
			continue
		}
		switch ct.DatabaseTypeName() {
		case "NUMERIC", "DECIMAL":
			if f, err := strconv.ParseFloat(string(b), 64); err == nil {
				row[ct.Name()] = f
				continue
			}
		}
		row[ct.Name()] = string(b)
	}
}
