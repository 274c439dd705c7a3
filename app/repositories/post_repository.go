package repositories

import (
	"context"
	"errors"
	"fmt"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// checkRefs fails with ErrConflict when the post points at a missing
// author or group.
func checkRefs(txn *badger.Txn, post *models.Post) error {
	if _, err := txn.Get(entityKey(AuthorKeyPrefix, post.AuthorID)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("author %d: %w", post.AuthorID, ErrConflict)
		}
		return err
	}
	if post.GroupID == nil {
		return nil
	}
	if _, err := txn.Get(entityKey(GroupKeyPrefix, *post.GroupID)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("group %d: %w", *post.GroupID, ErrConflict)
		}
		return err
	}
	return nil
}

// Create creates a new post
func (r *BadgerPostRepository) Create(_ context.Context, post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := checkRefs(txn, post); err != nil {
			return err
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(entityKey(PostKeyPrefix, post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update replaces text and group of an existing post
func (r *BadgerPostRepository) Update(_ context.Context, post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, post.ID)

		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := checkRefs(txn, post); err != nil {
			return err
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// scan returns the posts accepted by keep, in listing order.
func (r *BadgerPostRepository) scan(ctx context.Context, keep func(*models.Post) bool) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return err
			}
			if keep(&post) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortNewestFirst(posts)
	return posts, nil
}

func (r *BadgerPostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.scan(ctx, func(*models.Post) bool { return true })
}

func (r *BadgerPostRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.Post, error) {
	return r.scan(ctx, func(p *models.Post) bool { return p.InGroup(groupID) })
}

func (r *BadgerPostRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error) {
	return r.scan(ctx, func(p *models.Post) bool { return p.AuthorID == authorID })
}

func (r *BadgerPostRepository) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	posts, err := r.ListByAuthor(ctx, authorID)
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}
