// Package postgres stores articles in the blog.articles table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/blog"
)

const articleColumns = `id, title, description, content, author, status, created_at, updated_at`

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner) (blog.Article, error) {
	var (
		a      blog.Article
		status string
	)
	if err := s.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.Author, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return blog.Article{}, err
	}

	st, ok := blog.ParseStatus(status)
	if !ok {
		return blog.Article{}, apperr.Serialization("reading article", fmt.Errorf("unknown status %q", status))
	}
	a.Status = st

	return a, nil
}

func notFound(id uuid.UUID) error {
	return apperr.NotFound("article " + id.String())
}

func (r *Repo) Create(ctx context.Context, a blog.Article) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blog.articles (`+articleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Title, a.Description, a.Content, a.Author, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return apperr.Connection("inserting data", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (blog.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM blog.articles WHERE id = $1`, id)

	a, err := scanArticle(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return blog.Article{}, notFound(id)
	case apperr.KindOf(err) == apperr.KindSerialization:
		return blog.Article{}, err
	case err != nil:
		return blog.Article{}, apperr.Connection("fetching data", err)
	}

	return a, nil
}

func (r *Repo) List(ctx context.Context, opts blog.ListOptions, limit, offset int64) ([]blog.Article, int64, error) {
	var (
		where string
		args  []any
	)
	if opts.Status != "" {
		where = ` WHERE status = $1`
		args = append(args, string(opts.Status))
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog.articles`+where, args...).Scan(&count); err != nil {
		return nil, 0, apperr.Connection("fetching count", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM blog.articles%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		articleColumns, where, n+1, n+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, apperr.Connection("fetching data", err)
	}
	defer rows.Close()

	var items []blog.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindSerialization {
				return nil, 0, err
			}
			return nil, 0, apperr.Connection("fetching data", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Connection("fetching data", err)
	}

	return items, count, nil
}

func (r *Repo) Exists(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM blog.articles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return apperr.Connection("fetching data", err)
	}
	if !exists {
		return notFound(id)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, title, description, content string, updatedAt time.Time) error {
	return r.exec(ctx, id, "updating data",
		`UPDATE blog.articles SET title = $2, description = $3, content = $4, updated_at = $5 WHERE id = $1`,
		id, title, description, content, updatedAt,
	)
}

func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status blog.Status, updatedAt time.Time) error {
	return r.exec(ctx, id, "updating status",
		`UPDATE blog.articles SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, id, "deleting data", `DELETE FROM blog.articles WHERE id = $1`, id)
}

// exec runs a single-row statement and reports NotFound when no row matched.
func (r *Repo) exec(ctx context.Context, id uuid.UUID, step, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Connection(step, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Connection(step, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

var _ blog.Repo = (*Repo)(nil)
