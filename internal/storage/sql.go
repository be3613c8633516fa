package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// SQL keeps every collection in a single documents table.
type SQL struct {
	db      *sql.DB
	dialect string
}

func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return newSQL(ctx, db, "postgres")
}

func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)
	return newSQL(ctx, db, "sqlite")
}

func newSQL(ctx context.Context, db *sql.DB, dialect string) (*SQL, error) {
	s := &SQL{db: db, dialect: dialect}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQL) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.dialect == "sqlite" {
		schema = sqliteSchema
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQL) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`select id, body from documents where collection=? order by seq`), collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		var body []byte
		if err := rows.Scan(&r.ID, &body); err != nil {
			return nil, err
		}
		r.Data = body
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQL) ReplaceAll(ctx context.Context, collection string, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, s.q(`delete from documents where collection=?`), collection); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, s.q(`insert into documents(collection, id, body) values(?,?,?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, collection, r.ID, string(r.Data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQL) Upsert(ctx context.Context, collection string, rec Record) error {
	_, err := s.db.ExecContext(ctx, s.q(`insert into documents(collection, id, body) values(?,?,?)
on conflict(collection, id) do update set body=excluded.body`), collection, rec.ID, string(rec.Data))
	return err
}

func (s *SQL) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`delete from documents where collection=? and id=?`), collection, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQL) Close() error { return s.db.Close() }

// q rewrites ? placeholders to $n for postgres.
func (s *SQL) q(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

const postgresSchema = `
create table if not exists documents (
  seq bigserial,
  collection text not null,
  id text not null,
  body jsonb not null,
  primary key (collection, id)
);
create index if not exists documents_seq_idx on documents(collection, seq);
`

const sqliteSchema = `
create table if not exists documents (
  seq integer primary key autoincrement,
  collection text not null,
  id text not null,
  body text not null,
  unique (collection, id)
);
create index if not exists documents_seq_idx on documents(collection, seq);
`
