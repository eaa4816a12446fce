// Package stats holds the player statistics shown in the overlay. The
// numbers are sample values kept in memory for the life of the process.
package stats

import (
	"fmt"
	"sync"
)

// Category groups related statistics.
type Category string

const (
	Blocks Category = "blocks"
	Mobs   Category = "mobs"
	Items  Category = "items"
)

// Categories lists the categories in display order.
var Categories = []Category{Blocks, Mobs, Items}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown stats category %q (want blocks, mobs or items)", s)
}

// Stat is one named counter.
type Stat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Snapshot is a copy of every category.
type Snapshot struct {
	Blocks []Stat `json:"blocks"`
	Mobs   []Stat `json:"mobs"`
	Items  []Stat `json:"items"`
}

// Table is a mutable set of statistics. It is safe for concurrent use.
type Table struct {
	mu   sync.RWMutex
	data map[Category][]Stat
}

// NewTable returns a table seeded with the sample statistics.
func NewTable() *Table {
	return &Table{data: map[Category][]Stat{
		Blocks: {
			{"Stone Mined", 247},
			{"Dirt Collected", 156},
			{"Wood Chopped", 89},
			{"Coal Mined", 42},
			{"Iron Mined", 23},
			{"Diamond Mined", 4},
		},
		Mobs: {
			{"Zombies Killed", 37},
			{"Skeletons Killed", 28},
			{"Spiders Killed", 19},
			{"Creepers Killed", 12},
			{"Endermen Killed", 3},
		},
		Items: {
			{"Items Crafted", 153},
			{"Food Consumed", 87},
			{"Tools Broken", 24},
			{"Deaths", 7},
			{"Distance Traveled (blocks)", 14392},
		},
	}}
}

// Get returns a copy of every category.
func (t *Table) Get() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		Blocks: clone(t.data[Blocks]),
		Mobs:   clone(t.data[Mobs]),
		Items:  clone(t.data[Items]),
	}
}

// Category returns a copy of one category.
func (t *Table) Category(c Category) ([]Stat, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list, ok := t.data[c]
	if !ok {
		return nil, false
	}
	return clone(list), true
}

// Update sets an existing stat. It reports false if the stat does not exist.
func (t *Table) Update(c Category, name string, value int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.find(c, name)
	if i < 0 {
		return false
	}
	t.data[c][i].Value = value
	return true
}

// Increment adds amount to an existing stat.
func (t *Table) Increment(c Category, name string, amount int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.find(c, name)
	if i < 0 {
		return false
	}
	t.data[c][i].Value += amount
	return true
}

// Add appends a new stat to a known category. It reports false for an
// unknown category or a name that already exists.
func (t *Table) Add(c Category, name string, initial int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.data[c]; !ok {
		return false
	}
	if t.find(c, name) >= 0 {
		return false
	}
	t.data[c] = append(t.data[c], Stat{Name: name, Value: initial})
	return true
}

func (t *Table) find(c Category, name string) int {
	for i, s := range t.data[c] {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func clone(list []Stat) []Stat {
	out := make([]Stat, len(list))
	copy(out, list)
	return out
}
