package repositories

import (
	"context"
	"database/sql"

	"postboard/app/models"
)

const postColumns = `id, text, created_at, author_id, group_id`

// listing order shared by every post query
const newestFirst = ` ORDER BY created_at DESC, id DESC`

// SQLPostRepository implements PostRepository on SQLStore.
type SQLPostRepository struct {
	s *SQLStore
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post    models.Post
		created int64
		groupID sql.NullInt64
	)
	if err := row.Scan(&post.ID, &post.Text, &created, &post.AuthorID, &groupID); err != nil {
		return nil, err
	}
	post.CreatedAt = fromUnixNano(created)
	if groupID.Valid {
		id := int(groupID.Int64)
		post.GroupID = &id
	}
	return &post, nil
}

func nullableID(id *int) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func (r *SQLPostRepository) Create(ctx context.Context, post *models.Post) error {
	q := r.s.rebind(`INSERT INTO posts (text, created_at, author_id, group_id) VALUES (?, ?, ?, ?) RETURNING id`)
	err := r.s.db.QueryRowContext(ctx, q,
		post.Text, toUnixNano(post.CreatedAt), post.AuthorID, nullableID(post.GroupID),
	).Scan(&post.ID)
	return mapSQLError(err)
}

func (r *SQLPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	q := r.s.rebind(`SELECT ` + postColumns + ` FROM posts WHERE id = ?`)
	post, err := scanPost(r.s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapSQLError(err)
	}
	return post, nil
}

// Update replaces text and group of an existing post.
func (r *SQLPostRepository) Update(ctx context.Context, post *models.Post) error {
	q := r.s.rebind(`UPDATE posts SET text = ?, group_id = ? WHERE id = ?`)
	res, err := r.s.db.ExecContext(ctx, q, post.Text, nullableID(post.GroupID), post.ID)
	if err != nil {
		return mapSQLError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLPostRepository) query(ctx context.Context, where string, args ...any) ([]*models.Post, error) {
	q := r.s.rebind(`SELECT ` + postColumns + ` FROM posts` + where + newestFirst)
	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *SQLPostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.query(ctx, "")
}

func (r *SQLPostRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.Post, error) {
	return r.query(ctx, ` WHERE group_id = ?`, groupID)
}

func (r *SQLPostRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error) {
	return r.query(ctx, ` WHERE author_id = ?`, authorID)
}

func (r *SQLPostRepository) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	var n int
	q := r.s.rebind(`SELECT COUNT(*) FROM posts WHERE author_id = ?`)
	if err := r.s.db.QueryRowContext(ctx, q, authorID).Scan(&n); err != nil {
		return 0, mapSQLError(err)
	}
	return n, nil
}

// SQLGroupRepository implements GroupRepository on SQLStore.
type SQLGroupRepository struct {
	s *SQLStore
}

func scanGroup(row rowScanner) (*models.Group, error) {
	var g models.Group
	if err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *SQLGroupRepository) Create(ctx context.Context, group *models.Group) error {
	q := r.s.rebind(`INSERT INTO post_groups (title, slug, description) VALUES (?, ?, ?) RETURNING id`)
	err := r.s.db.QueryRowContext(ctx, q, group.Title, group.Slug, group.Description).Scan(&group.ID)
	return mapSQLError(err)
}

func (r *SQLGroupRepository) get(ctx context.Context, where string, arg any) (*models.Group, error) {
	q := r.s.rebind(`SELECT id, title, slug, description FROM post_groups WHERE ` + where)
	g, err := scanGroup(r.s.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, mapSQLError(err)
	}
	return g, nil
}

func (r *SQLGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *SQLGroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return r.get(ctx, `slug = ?`, slug)
}

func (r *SQLGroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, title, slug, description FROM post_groups ORDER BY id`)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// SQLAuthorRepository implements AuthorRepository on SQLStore.
type SQLAuthorRepository struct {
	s *SQLStore
}

func scanAuthor(row rowScanner) (*models.Author, error) {
	var (
		a       models.Author
		created int64
	)
	if err := row.Scan(&a.ID, &a.Username, &created); err != nil {
		return nil, err
	}
	a.CreatedAt = fromUnixNano(created)
	return &a, nil
}

func (r *SQLAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	q := r.s.rebind(`INSERT INTO authors (username, created_at) VALUES (?, ?) RETURNING id`)
	err := r.s.db.QueryRowContext(ctx, q, author.Username, toUnixNano(author.CreatedAt)).Scan(&author.ID)
	return mapSQLError(err)
}

func (r *SQLAuthorRepository) get(ctx context.Context, where string, arg any) (*models.Author, error) {
	q := r.s.rebind(`SELECT id, username, created_at FROM authors WHERE ` + where)
	a, err := scanAuthor(r.s.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, mapSQLError(err)
	}
	return a, nil
}

func (r *SQLAuthorRepository) GetByID(ctx context.Context, id int) (*models.Author, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *SQLAuthorRepository) GetByUsername(ctx context.Context, username string) (*models.Author, error) {
	return r.get(ctx, `username = ?`, username)
}

func (r *SQLAuthorRepository) List(ctx context.Context) ([]*models.Author, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, username, created_at FROM authors ORDER BY id`)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	authors := []*models.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}
