// Package mock provides an in-memory store with the same contract as the
// badger and SQL stores, for service and controller tests.
package mock

import (
	"context"
	"sync"

	"postboard/app/models"
	"postboard/app/repositories"
)

type data struct {
	mutex   sync.RWMutex
	posts   map[int]models.Post
	groups  map[int]models.Group
	authors map[int]models.Author
	nextID  map[string]int
	err     error
}

type PostRepository struct{ d *data }

type GroupRepository struct{ d *data }

type AuthorRepository struct{ d *data }

// Store is the in-memory engine. Records are copied on the way in and out,
// so callers never share memory with the store.
type Store struct {
	d       *data
	Posts   *PostRepository
	Groups  *GroupRepository
	Authors *AuthorRepository
}

func NewStore() *Store {
	d := &data{}
	d.reset()
	return &Store{
		d:       d,
		Posts:   &PostRepository{d: d},
		Groups:  &GroupRepository{d: d},
		Authors: &AuthorRepository{d: d},
	}
}

func (d *data) reset() {
	d.posts = make(map[int]models.Post)
	d.groups = make(map[int]models.Group)
	d.authors = make(map[int]models.Author)
	d.nextID = map[string]int{"post": 1, "group": 1, "author": 1}
	d.err = nil
}

func (d *data) next(kind string) int {
	id := d.nextID[kind]
	d.nextID[kind] = id + 1
	return id
}

// Clear drops every record and resets the ID sequences.
func (m *Store) Clear() {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()
	m.d.reset()
}

// FailWith makes every subsequent call return err; nil restores normal behaviour.
func (m *Store) FailWith(err error) {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()
	m.d.err = err
}

// Repositories exposes the mock behind the engine-neutral Store.
func (m *Store) Repositories() *repositories.Store {
	return repositories.NewStore("memory", m.Posts, m.Groups, m.Authors,
		func(context.Context) error {
			m.d.mutex.RLock()
			defer m.d.mutex.RUnlock()
			return m.d.err
		}, nil)
}

func copyPost(p models.Post) *models.Post {
	if p.GroupID != nil {
		id := *p.GroupID
		p.GroupID = &id
	}
	return &p
}

// PostRepository implementation

func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()
	if m.d.err != nil {
		return m.d.err
	}
	if err := m.d.checkRefs(post); err != nil {
		return err
	}

	post.ID = m.d.next("post")
	m.d.posts[post.ID] = *copyPost(*post)
	return nil
}

func (d *data) checkRefs(post *models.Post) error {
	if _, ok := d.authors[post.AuthorID]; !ok {
		return repositories.ErrConflict
	}
	if post.GroupID != nil {
		if _, ok := d.groups[*post.GroupID]; !ok {
			return repositories.ErrConflict
		}
	}
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	post, exists := m.d.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyPost(post), nil
}

func (m *PostRepository) Update(_ context.Context, post *models.Post) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()
	if m.d.err != nil {
		return m.d.err
	}

	if _, exists := m.d.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if err := m.d.checkRefs(post); err != nil {
		return err
	}
	m.d.posts[post.ID] = *copyPost(*post)
	return nil
}

func (m *PostRepository) filter(keep func(*models.Post) bool) ([]*models.Post, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	posts := []*models.Post{}
	for _, p := range m.d.posts {
		post := copyPost(p)
		if keep(post) {
			posts = append(posts, post)
		}
	}
	repositories.SortNewestFirst(posts)
	return posts, nil
}

func (m *PostRepository) ListAll(_ context.Context) ([]*models.Post, error) {
	return m.filter(func(*models.Post) bool { return true })
}

func (m *PostRepository) ListByGroup(_ context.Context, groupID int) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.InGroup(groupID) })
}

func (m *PostRepository) ListByAuthor(_ context.Context, authorID int) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.AuthorID == authorID })
}

func (m *PostRepository) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	posts, err := m.ListByAuthor(ctx, authorID)
	return len(posts), err
}

// GroupRepository implementation

func (m *GroupRepository) Create(_ context.Context, group *models.Group) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()
	if m.d.err != nil {
		return m.d.err
	}

	for _, g := range m.d.groups {
		if g.Slug == group.Slug {
			return repositories.ErrAlreadyExists
		}
	}
	group.ID = m.d.next("group")
	m.d.groups[group.ID] = *group
	return nil
}

func (m *GroupRepository) GetByID(_ context.Context, id int) (*models.Group, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	g, exists := m.d.groups[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &g, nil
}

func (m *GroupRepository) GetBySlug(_ context.Context, slug string) (*models.Group, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	for _, g := range m.d.groups {
		if g.Slug == slug {
			return &g, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *GroupRepository) List(_ context.Context) ([]*models.Group, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	groups := []*models.Group{}
	for id := 1; id < m.d.nextID["group"]; id++ {
		if g, exists := m.d.groups[id]; exists {
			groups = append(groups, &g)
		}
	}
	return groups, nil
}

// AuthorRepository implementation

func (m *AuthorRepository) Create(_ context.Context, author *models.Author) error {
	m.d.mutex.Lock()
	defer m.d.mutex.Unlock()
	if m.d.err != nil {
		return m.d.err
	}

	for _, a := range m.d.authors {
		if a.Username == author.Username {
			return repositories.ErrAlreadyExists
		}
	}
	author.ID = m.d.next("author")
	m.d.authors[author.ID] = *author
	return nil
}

func (m *AuthorRepository) GetByID(_ context.Context, id int) (*models.Author, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	a, exists := m.d.authors[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (m *AuthorRepository) GetByUsername(_ context.Context, username string) (*models.Author, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	for _, a := range m.d.authors {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *AuthorRepository) List(_ context.Context) ([]*models.Author, error) {
	m.d.mutex.RLock()
	defer m.d.mutex.RUnlock()
	if m.d.err != nil {
		return nil, m.d.err
	}

	authors := []*models.Author{}
	for id := 1; id < m.d.nextID["author"]; id++ {
		if a, exists := m.d.authors[id]; exists {
			authors = append(authors, &a)
		}
	}
	return authors, nil
}

var (
	_ repositories.PostRepository   = (*PostRepository)(nil)
	_ repositories.GroupRepository  = (*GroupRepository)(nil)
	_ repositories.AuthorRepository = (*AuthorRepository)(nil)
)
