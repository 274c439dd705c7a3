package repositories

import (
	"context"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db *badger.DB
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db}
}

// Create stores the group and claims its slug; a taken slug yields ErrAlreadyExists.
func (r *BadgerGroupRepository) Create(_ context.Context, group *models.Group) error {
	return r.db.Update(func(txn *badger.Txn) error {
		slugKey := GroupSlugIndexPrefix + group.Slug
		if _, err := lookupIndex(txn, slugKey); err == nil {
			return ErrAlreadyExists
		} else if err != ErrNotFound {
			return err
		}

		id, err := getNextID(txn, GroupSeqKey)
		if err != nil {
			return err
		}
		group.ID = id

		data, err := marshalEntity(group)
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(GroupKeyPrefix, id), data); err != nil {
			return err
		}
		return txn.Set([]byte(slugKey), encodeID(id))
	})
}

func (r *BadgerGroupRepository) GetByID(_ context.Context, id int) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *BadgerGroupRepository) GetBySlug(_ context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, GroupSlugIndexPrefix+slug)
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns all groups ordered by ID.
func (r *BadgerGroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	groups := []*models.Group{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(GroupKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var group models.Group
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &group)
			})
			if err != nil {
				return err
			}
			groups = append(groups, &group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByID(groups, func(g *models.Group) int { return g.ID })
	return groups, nil
}
