// Package ini parses INI configuration files: [Section] headers, Key =
// Value entries, +Key = Value list appends, and nested (k=v, ...) map and
// [v, ...] list values. Lines starting with ';' or '#' are comments.
package ini

import (
	"fmt"
	"strings"
)

// ItemKind discriminates section item variants.
type ItemKind int

const (
	StringItem ItemKind = iota // scalar text
	SingleItem                 // one nested value
	ListItem                   // ordered values, built by +Key appends or [..]
	MapItem                    // named values, built by (..)
)

func (k ItemKind) String() string {
	switch k {
	case StringItem:
		return "string"
	case SingleItem:
		return "single"
	case ListItem:
		return "list"
	case MapItem:
		return "map"
	default:
		return "unknown"
	}
}

// Item is one section value. Lists and maps nest arbitrarily.
type Item struct {
	kind ItemKind

	str      string
	single   *Item
	list     []*Item
	entries  map[string]*Item
	mapOrder []string // map insertion order, for deterministic rendering
}

// NewString creates a scalar item.
func NewString(content string) *Item {
	return &Item{kind: StringItem, str: content}
}

// NewSingle creates an empty single-value item.
func NewSingle() *Item {
	return &Item{kind: SingleItem}
}

// NewList creates an empty list item.
func NewList() *Item {
	return &Item{kind: ListItem}
}

// NewMap creates an empty map item.
func NewMap() *Item {
	return &Item{kind: MapItem, entries: make(map[string]*Item)}
}

// Kind returns the item variant.
func (it *Item) Kind() ItemKind {
	return it.kind
}

// Str returns the scalar text, reaching through a Single wrapper.
func (it *Item) Str() (string, bool) {
	switch it.kind {
	case StringItem:
		return it.str, true
	case SingleItem:
		if it.single != nil {
			return it.single.Str()
		}
	}
	return "", false
}

// Single returns the wrapped value of a Single item.
func (it *Item) Single() (*Item, bool) {
	if it.kind != SingleItem {
		return nil, false
	}
	return it.single, it.single != nil
}

// SetSingle stores the wrapped value of a Single item.
func (it *Item) SetSingle(v *Item) {
	it.single = v
}

// List returns the elements, reaching through a Single wrapper.
func (it *Item) List() ([]*Item, bool) {
	switch it.kind {
	case ListItem:
		return it.list, true
	case SingleItem:
		if it.single != nil {
			return it.single.List()
		}
	}
	return nil, false
}

// Append adds an element to a list item.
func (it *Item) Append(v *Item) {
	it.list = append(it.list, v)
}

// Map returns the entries, reaching through a Single wrapper.
func (it *Item) Map() (map[string]*Item, bool) {
	switch it.kind {
	case MapItem:
		return it.entries, true
	case SingleItem:
		if it.single != nil {
			return it.single.Map()
		}
	}
	return nil, false
}

// MapGet looks up a map entry by key.
func (it *Item) MapGet(key string) (*Item, bool) {
	m, ok := it.Map()
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// MapPut inserts a map entry, refusing duplicate keys.
func (it *Item) MapPut(key string, v *Item) bool {
	if _, exists := it.entries[key]; exists {
		return false
	}
	it.entries[key] = v
	it.mapOrder = append(it.mapOrder, key)
	return true
}

// String renders the item in the dump format: scalars bare, lists as
// [a, b], maps as (k=v, ...).
func (it *Item) String() string {
	switch it.kind {
	case StringItem:
		return it.str
	case SingleItem:
		if it.single == nil {
			return "(null)"
		}
		return it.single.String()
	case ListItem:
		var b strings.Builder
		b.WriteString("[")
		for i, v := range it.list {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.String())
		}
		b.WriteString("]")
		return b.String()
	case MapItem:
		var b strings.Builder
		b.WriteString("(")
		for i, key := range it.mapOrder {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(key)
			b.WriteString("=")
			b.WriteString(it.entries[key].String())
		}
		b.WriteString(")")
		return b.String()
	default:
		return "(unknown)"
	}
}

// Section is one [Name] block and its items in declaration order.
type Section struct {
	name  string
	items map[string]*Item
	order []string
}

// NewSection creates an empty section.
func NewSection(name string) *Section {
	return &Section{name: name, items: make(map[string]*Item)}
}

// Name returns the section name.
func (s *Section) Name() string {
	return s.name
}

// Item looks up an item by key.
func (s *Section) Item(key string) (*Item, bool) {
	it, ok := s.items[key]
	return it, ok
}

// AddItem inserts an item, refusing duplicate keys.
func (s *Section) AddItem(key string, it *Item) bool {
	if _, exists := s.items[key]; exists {
		return false
	}
	s.items[key] = it
	s.order = append(s.order, key)
	return true
}

// Keys returns item keys in declaration order.
func (s *Section) Keys() []string {
	return s.order
}

// Len returns the number of items.
func (s *Section) Len() int {
	return len(s.items)
}

// File is a parsed INI document.
type File struct {
	name     string
	sections map[string]*Section
	order    []string
}

// NewFile creates an empty document.
func NewFile(name string) *File {
	return &File{name: name, sections: make(map[string]*Section)}
}

// Name returns the file name the document was parsed from.
func (f *File) Name() string {
	return f.name
}

// Section looks up a section by name.
func (f *File) Section(name string) (*Section, bool) {
	s, ok := f.sections[name]
	return s, ok
}

// AddSection inserts a section, refusing duplicates.
func (f *File) AddSection(name string, s *Section) bool {
	if _, exists := f.sections[name]; exists {
		return false
	}
	f.sections[name] = s
	f.order = append(f.order, name)
	return true
}

// SectionNames returns section names in declaration order.
func (f *File) SectionNames() []string {
	return f.order
}

// Len returns the number of sections.
func (f *File) Len() int {
	return len(f.sections)
}

// String renders the whole document in the dump format.
func (f *File) String() string {
	var b strings.Builder
	for _, name := range f.order {
		section := f.sections[name]
		b.WriteString(fmt.Sprintf("[%s]\n", name))
		for _, key := range section.order {
			b.WriteString(fmt.Sprintf("\t%s -> %s\n", key, section.items[key].String()))
		}
		b.WriteString("\n")
	}
	return b.String()
}
