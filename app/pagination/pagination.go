// Package pagination splits ordered listings into fixed-size, 1-based pages.
//
// Requested page numbers are never an error: absent or malformed values
// serve the first page, values below 1 serve the first page and values past
// the end serve the last one.
package pagination

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items per page when no size is configured.
const DefaultPageSize = 10

// Page is one window of an ordered listing plus the metadata needed to
// navigate to its neighbours.
type Page[T any] struct {
	Items    []T
	Number   int
	PerPage  int
	Count    int
	NumPages int
}

// ParsePageNumber reads the raw page parameter. A nil, empty or
// non-numeric value yields 1; numeric values are returned as-is and are
// clamped later against the total. Values beyond the int range saturate.
func ParsePageNumber(raw *string) int {
	if raw == nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
		return n
	}
	if err != nil {
		return 1
	}
	return n
}

// NumPages returns the page count for total items, never less than 1.
func NumPages(total, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Clamp bounds a requested page number to [1, numPages].
func Clamp(number, numPages int) int {
	if number < 1 {
		return 1
	}
	if number > numPages {
		return numPages
	}
	return number
}

// Paginate returns the page of items selected by raw. items must already
// be in display order; Paginate does not copy or reorder them.
func Paginate[T any](items []T, raw *string, perPage int) Page[T] {
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	total := len(items)
	numPages := NumPages(total, perPage)
	number := Clamp(ParsePageNumber(raw), numPages)

	lo := (number - 1) * perPage
	hi := min(lo+perPage, total)

	return Page[T]{
		Items:    items[lo:hi:hi],
		Number:   number,
		PerPage:  perPage,
		Count:    total,
		NumPages: numPages,
	}
}

// Len is the number of items on this page.
func (p Page[T]) Len() int { return len(p.Items) }

func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p Page[T]) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

// NextPageNumber returns the following page number and false on the last page.
func (p Page[T]) NextPageNumber() (int, bool) {
	if !p.HasNext() {
		return 0, false
	}
	return p.Number + 1, true
}

// PreviousPageNumber returns the preceding page number and false on the first page.
func (p Page[T]) PreviousPageNumber() (int, bool) {
	if !p.HasPrevious() {
		return 0, false
	}
	return p.Number - 1, true
}

// StartIndex is the 1-based position of the first item on the page within
// the whole listing, or 0 for an empty listing.
func (p Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (p Page[T]) EndIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Items) - 1
}

type pageJSON[T any] struct {
	ObjectList         []T  `json:"object_list"`
	Number             int  `json:"number"`
	PerPage            int  `json:"per_page"`
	Count              int  `json:"count"`
	NumPages           int  `json:"num_pages"`
	HasNext            bool `json:"has_next"`
	HasPrevious        bool `json:"has_previous"`
	NextPageNumber     *int `json:"next_page_number,omitempty"`
	PreviousPageNumber *int `json:"previous_page_number,omitempty"`
	StartIndex         int  `json:"start_index"`
	EndIndex           int  `json:"end_index"`
}

func (p Page[T]) MarshalJSON() ([]byte, error) {
	out := pageJSON[T]{
		ObjectList:  p.Items,
		Number:      p.Number,
		PerPage:     p.PerPage,
		Count:       p.Count,
		NumPages:    p.NumPages,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
		StartIndex:  p.StartIndex(),
		EndIndex:    p.EndIndex(),
	}
	if out.ObjectList == nil {
		out.ObjectList = []T{}
	}
	if n, ok := p.NextPageNumber(); ok {
		out.NextPageNumber = &n
	}
	if n, ok := p.PreviousPageNumber(); ok {
		out.PreviousPageNumber = &n
	}
	return json.Marshal(out)
}

// Map converts the items of a page while keeping its position metadata.
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	items := make([]U, len(p.Items))
	for i, it := range p.Items {
		items[i] = f(it)
	}
	return Page[U]{
		Items:    items,
		Number:   p.Number,
		PerPage:  p.PerPage,
		Count:    p.Count,
		NumPages: p.NumPages,
	}
}
