package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrTooManyPages = errors.New("listing exceeded the page limit")

// Pager walks a prefix listing one page at a time. A fresh or Reset pager
// starts from the empty cursor.
type Pager struct {
	store    ObjectStore
	prefix   string
	pageSize int
	maxPages int

	cursor string
	pages  int
	done   bool
}

// NewPager returns a pager over prefix. maxPages <= 0 disables the page cap.
func NewPager(store ObjectStore, prefix string, pageSize, maxPages int) *Pager {
	return &Pager{store: store, prefix: prefix, pageSize: pageSize, maxPages: maxPages}
}

func (p *Pager) Done() bool {
	return p.done
}

func (p *Pager) Next(ctx context.Context) ([]ObjectInfo, error) {
	if p.done {
		return nil, nil
	}
	if p.maxPages > 0 && p.pages >= p.maxPages {
		return nil, fmt.Errorf("%w: %d pages under %q", ErrTooManyPages, p.pages, p.prefix)
	}

	page, err := p.store.ListPage(ctx, p.prefix, p.cursor, p.pageSize)
	if err != nil {
		return nil, err
	}
	p.pages++

	if page.Truncated && page.Cursor != "" {
		p.cursor = page.Cursor
	} else {
		p.done = true
	}
	return page.Objects, nil
}

func (p *Pager) Reset() {
	p.cursor = ""
	p.pages = 0
	p.done = false
}

// ListAll drains every page under prefix.
func ListAll(ctx context.Context, store ObjectStore, prefix string, pageSize, maxPages int) ([]ObjectInfo, error) {
	pager := NewPager(store, prefix, pageSize, maxPages)

	var all []ObjectInfo
	for !pager.Done() {
		objects, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, objects...)
	}
	return all, nil
}
