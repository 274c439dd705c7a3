package repositories

import (
	"sort"

	"postboard/app/models"
)

// SortNewestFirst puts posts in listing order: CreatedAt descending, ties
// broken by descending ID. Stores without an ORDER BY use it after a scan.
func SortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// sortByID orders records ascending by the ID returned from id; badger
// keys compare as strings, so "group:10" would otherwise precede "group:2".
func sortByID[T any](records []T, id func(T) int) {
	sort.Slice(records, func(i, j int) bool { return id(records[i]) < id(records[j]) })
}
