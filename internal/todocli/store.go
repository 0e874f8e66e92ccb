// Package todocli holds the in-memory store behind the standalone todo
// command line tool. Nothing is persisted; the store lives for one process.
package todocli

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrEmptyTitle = errors.New("title must not be empty")
	ErrNotFound   = errors.New("item not found")
)

type Item struct {
	ID    int
	Title string
	Done  bool
}

type Filter int

const (
	FilterAll Filter = iota
	FilterDone
	FilterPending
)

type Store struct {
	mu     sync.Mutex
	nextID int
	items  map[int]Item
}

func NewStore() *Store {
	return &Store{
		nextID: 1,
		items:  make(map[int]Item),
	}
}

func (s *Store) Add(title string) (Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Item{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{ID: s.nextID, Title: title}
	s.items[item.ID] = item
	s.nextID++
	return item, nil
}

func (s *Store) List(filter Filter) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		switch filter {
		case FilterDone:
			if !item.Done {
				continue
			}
		case FilterPending:
			if item.Done {
				continue
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Toggle flips the done flag and returns the updated item.
func (s *Store) Toggle(id int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	item.Done = !item.Done
	s.items[id] = item
	return item, nil
}

func (s *Store) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.items)
	s.items = make(map[int]Item)
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
