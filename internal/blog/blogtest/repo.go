// Package blogtest provides an in-memory blog.Repo for tests.
package blogtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/blog"
)

// Repo keeps articles in a map. Err, when set, is returned by every call.
type Repo struct {
	mu       sync.Mutex
	articles map[uuid.UUID]blog.Article

	Err error

	// Calls counts invocations per method name.
	Calls map[string]int
}

func New() *Repo {
	return &Repo{
		articles: make(map[uuid.UUID]blog.Article),
		Calls:    make(map[string]int),
	}
}

// Put seeds an article.
func (r *Repo) Put(a blog.Article) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[a.ID] = a
}

func (r *Repo) call(name string) error {
	r.Calls[name]++
	return r.Err
}

func notFound(id uuid.UUID) error {
	return apperr.NotFound("article " + id.String())
}

func (r *Repo) Create(_ context.Context, a blog.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Create"); err != nil {
		return err
	}
	r.articles[a.ID] = a
	return nil
}

func (r *Repo) Get(_ context.Context, id uuid.UUID) (blog.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Get"); err != nil {
		return blog.Article{}, err
	}
	a, ok := r.articles[id]
	if !ok {
		return blog.Article{}, notFound(id)
	}
	return a, nil
}

func (r *Repo) List(_ context.Context, opts blog.ListOptions, limit, offset int64) ([]blog.Article, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("List"); err != nil {
		return nil, 0, err
	}

	var all []blog.Article
	for _, a := range r.articles {
		if opts.Status == "" || a.Status == opts.Status {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	count := int64(len(all))
	if offset >= count {
		return nil, count, nil
	}
	end := min(offset+limit, count)
	return all[offset:end], count, nil
}

func (r *Repo) Exists(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Exists"); err != nil {
		return err
	}
	if _, ok := r.articles[id]; !ok {
		return notFound(id)
	}
	return nil
}

func (r *Repo) Update(_ context.Context, id uuid.UUID, title, description, content string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Update"); err != nil {
		return err
	}
	a, ok := r.articles[id]
	if !ok {
		return notFound(id)
	}
	a.Title, a.Description, a.Content, a.UpdatedAt = title, description, content, updatedAt
	r.articles[id] = a
	return nil
}

func (r *Repo) SetStatus(_ context.Context, id uuid.UUID, status blog.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("SetStatus"); err != nil {
		return err
	}
	a, ok := r.articles[id]
	if !ok {
		return notFound(id)
	}
	a.Status, a.UpdatedAt = status, updatedAt
	r.articles[id] = a
	return nil
}

func (r *Repo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Delete"); err != nil {
		return err
	}
	delete(r.articles, id)
	return nil
}

var _ blog.Repo = (*Repo)(nil)
