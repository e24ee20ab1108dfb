package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Prashu2024/form-builder-backend/internal/models"
)

type dialect struct {
	driver string
	// idText renders the id column as text for prefix matching.
	idText string
	// tiebreak orders rows that share a created_at value.
	tiebreak   string
	singleConn bool
	numbered   bool
	schema     []string
	encodeTime func(time.Time) any
}

var dialects = map[string]dialect{
	"sqlite": {
		driver:     "sqlite",
		idText:     "id",
		tiebreak:   "rowid",
		singleConn: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS form_submissions (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS form_submissions_created_at ON form_submissions (created_at)`,
		},
		encodeTime: func(t time.Time) any { return formatTime(t) },
	},
	"postgres": {
		driver:   "postgres",
		idText:   "id::text",
		tiebreak: "id",
		numbered: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS form_submissions (
				id UUID PRIMARY KEY,
				data JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS form_submissions_created_at ON form_submissions (created_at)`,
		},
		encodeTime: func(t time.Time) any { return t.UTC() },
	},
}

// rebind rewrites ? placeholders to $n for drivers that need numbered ones.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore keeps one JSON blob per row in the form_submissions table.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	opts    options
}

// OpenSQL connects to driver ("sqlite" or "postgres") and creates the table
// if needed.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if d.singleConn {
		// Serializes writers and keeps ":memory:" databases on one connection.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := &SQLStore{db: conn, dialect: d, opts: buildOptions(opts)}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, data map[string]any) (*models.Submission, error) {
	sub := s.opts.stamp(data)
	raw, err := json.Marshal(sub.Data)
	if err != nil {
		return nil, fmt.Errorf("encode submission data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		s.dialect.rebind(`INSERT INTO form_submissions (id, data, created_at) VALUES (?, ?, ?)`),
		sub.ID, string(raw), s.dialect.encodeTime(sub.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

func (s *SQLStore) List(ctx context.Context, q ListQuery) (*Page, error) {
	q = q.normalized()
	where, args := s.where(q)

	var total int
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT COUNT(*) FROM form_submissions`+where), args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	page := q.page(total)
	if q.pastEnd(total) {
		page.Items = []models.Submission{}
		return page, nil
	}

	dir := "DESC"
	if q.Ascending() {
		dir = "ASC"
	}
	query := `SELECT id, data, created_at FROM form_submissions` + where +
		` ORDER BY created_at ` + dir + `, ` + s.dialect.tiebreak + ` ` + dir +
		` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), append(args, q.Limit, q.offset())...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	page.Items = make([]models.Submission, 0, q.Limit)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return page, nil
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT id, data, created_at FROM form_submissions WHERE id = ?`),
		strings.ToLower(id))
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) where(q ListQuery) (string, []any) {
	var conds []string
	var args []any
	if q.IDPrefix != "" {
		conds = append(conds, `LOWER(`+s.dialect.idText+`) LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(strings.ToLower(q.IDPrefix))+"%")
	}
	if !q.CreatedAfter.IsZero() {
		conds = append(conds, `created_at >= ?`)
		args = append(args, s.dialect.encodeTime(q.CreatedAfter))
	}
	if !q.CreatedBefore.IsZero() {
		conds = append(conds, `created_at < ?`)
		args = append(args, s.dialect.encodeTime(q.CreatedBefore))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		id      string
		raw     []byte
		created timestamp
	)
	if err := row.Scan(&id, &raw, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	data, err := decodeData(raw)
	if err != nil {
		return nil, err
	}
	return &models.Submission{ID: id, Data: data, CreatedAt: created.Time}, nil
}
