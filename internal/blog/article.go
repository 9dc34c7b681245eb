// Package blog is the article administration domain: articles move between
// draft, published and trash, and are listed a page at a time.
package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusTrash     Status = "trash"
)

// ParseStatus reports whether s names a known status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPublished, StatusDraft, StatusTrash:
		return st, true
	default:
		return "", false
	}
}

type Article struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListOptions filters a listing. The zero value lists every article.
type ListOptions struct {
	Status Status
}

// ParseListOptions reads a status filter. "all", "" and unknown values list
// everything.
func ParseListOptions(s string) ListOptions {
	if st, ok := ParseStatus(s); ok {
		return ListOptions{Status: st}
	}
	return ListOptions{}
}

// Listing is one page of results. Pages is the total page count.
type Listing[T any] struct {
	Items []T   `json:"items"`
	Pages int64 `json:"pages"`
}

// Repo persists articles. Get, Exists and the mutators report a missing id
// as apperr.NotFound.
type Repo interface {
	Create(ctx context.Context, a Article) error
	Get(ctx context.Context, id uuid.UUID) (Article, error)
	List(ctx context.Context, opts ListOptions, limit, offset int64) ([]Article, int64, error)
	Exists(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, title, description, content string, updatedAt time.Time) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
