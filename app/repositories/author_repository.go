package repositories

import (
	"context"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerAuthorRepository implements AuthorRepository using BadgerDB
type BadgerAuthorRepository struct {
	db *badger.DB
}

// NewBadgerAuthorRepository creates a new BadgerAuthorRepository
func NewBadgerAuthorRepository(db *badger.DB) *BadgerAuthorRepository {
	return &BadgerAuthorRepository{db: db}
}

// Create stores the author and claims the username; a taken username yields ErrAlreadyExists.
func (r *BadgerAuthorRepository) Create(_ context.Context, author *models.Author) error {
	return r.db.Update(func(txn *badger.Txn) error {
		nameKey := AuthorUsernameIndexPrefix + author.Username
		if _, err := lookupIndex(txn, nameKey); err == nil {
			return ErrAlreadyExists
		} else if err != ErrNotFound {
			return err
		}

		id, err := getNextID(txn, AuthorSeqKey)
		if err != nil {
			return err
		}
		author.ID = id

		data, err := marshalEntity(author)
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(AuthorKeyPrefix, id), data); err != nil {
			return err
		}
		return txn.Set([]byte(nameKey), encodeID(id))
	})
}

func (r *BadgerAuthorRepository) GetByID(_ context.Context, id int) (*models.Author, error) {
	var author models.Author
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(AuthorKeyPrefix, id), &author)
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *BadgerAuthorRepository) GetByUsername(_ context.Context, username string) (*models.Author, error) {
	var author models.Author
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, AuthorUsernameIndexPrefix+username)
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(AuthorKeyPrefix, id), &author)
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// List returns all authors ordered by ID.
func (r *BadgerAuthorRepository) List(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(AuthorKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var author models.Author
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &author)
			})
			if err != nil {
				return err
			}
			authors = append(authors, &author)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByID(authors, func(a *models.Author) int { return a.ID })
	return authors, nil
}
