package blog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fluxynet/blog/internal/apperr"
)

const DefaultPageSize = 10

type Admin struct {
	repo     Repo
	pageSize int64
	now      func() time.Time
}

func NewAdmin(repo Repo, pageSize int) *Admin {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Admin{
		repo:     repo,
		pageSize: int64(pageSize),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if f[1] == "" {
			return apperr.InvalidInput(f[0] + " cannot be empty")
		}
	}
	return nil
}

// Create stores a new draft.
func (a *Admin) Create(ctx context.Context, title, description, content, author string) (Article, error) {
	err := required(
		[2]string{"title", title},
		[2]string{"description", description},
		[2]string{"content", content},
		[2]string{"author", author},
	)
	if err != nil {
		return Article{}, err
	}

	now := a.now()
	article := Article{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Content:     content,
		Author:      author,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.repo.Create(ctx, article); err != nil {
		return Article{}, err
	}

	return article, nil
}

func (a *Admin) Get(ctx context.Context, id uuid.UUID) (Article, error) {
	return a.repo.Get(ctx, id)
}

// List returns the given page, newest first. Pages below 1 read as 1.
func (a *Admin) List(ctx context.Context, opts ListOptions, page int64) (Listing[Article], error) {
	if page <= 0 {
		page = 1
	}

	items, count, err := a.repo.List(ctx, opts, a.pageSize, (page-1)*a.pageSize)
	if err != nil {
		return Listing[Article]{}, err
	}
	if items == nil {
		items = []Article{}
	}

	return Listing[Article]{
		Items: items,
		Pages: (count + a.pageSize - 1) / a.pageSize,
	}, nil
}

// Update replaces the text fields. A missing article is reported before
// invalid input.
func (a *Admin) Update(ctx context.Context, id uuid.UUID, title, description, content string) error {
	if _, err := a.repo.Get(ctx, id); err != nil {
		return err
	}

	err := required(
		[2]string{"title", title},
		[2]string{"description", description},
		[2]string{"content", content},
	)
	if err != nil {
		return err
	}

	return a.repo.Update(ctx, id, title, description, content, a.now())
}

func (a *Admin) Publish(ctx context.Context, id uuid.UUID) error {
	return a.setStatus(ctx, id, StatusPublished)
}

func (a *Admin) MoveToDraft(ctx context.Context, id uuid.UUID) error {
	return a.setStatus(ctx, id, StatusDraft)
}

func (a *Admin) MoveToTrash(ctx context.Context, id uuid.UUID) error {
	return a.setStatus(ctx, id, StatusTrash)
}

func (a *Admin) setStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if err := a.repo.Exists(ctx, id); err != nil {
		return err
	}
	return a.repo.SetStatus(ctx, id, status, a.now())
}

func (a *Admin) Delete(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.Exists(ctx, id); err != nil {
		return err
	}
	return a.repo.Delete(ctx, id)
}
