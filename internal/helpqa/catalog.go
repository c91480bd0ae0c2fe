package helpqa

import (
	"sort"
	"time"
)

// Category is a help section backed by an issue label.
type Category struct {
	ID          string
	Name        string
	Description string
	Color       string
	Icon        string
}

// Item is a help article backed by an issue.
type Item struct {
	ID         string
	Number     int
	Title      string
	Body       string
	HTML       string
	State      string
	IsPinned   bool
	CreatedAt  time.Time
	URL        string
	Categories []*Category
}

// HasCategory reports whether the item is filed under the category id.
func (i *Item) HasCategory(id string) bool {
	for _, category := range i.Categories {
		if category.ID == id {
			return true
		}
	}
	return false
}

// Catalog holds the categories and items of a help repository.
type Catalog struct {
	categories []*Category
	items      []*Item
}

// NewCatalog orders items by issue number, newest first.
func NewCatalog(categories []*Category, items []*Item) *Catalog {
	sorted := append([]*Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number > sorted[j].Number
	})
	return &Catalog{categories: categories, items: sorted}
}

// Empty reports whether the catalog has nothing to show.
func (c *Catalog) Empty() bool {
	return c == nil || (len(c.categories) == 0 && len(c.items) == 0)
}

func (c *Catalog) Categories() []*Category {
	if c == nil {
		return nil
	}
	return c.categories
}

func (c *Catalog) Items() []*Item {
	if c == nil {
		return nil
	}
	return c.items
}

// Pinned returns items with an assignee.
func (c *Catalog) Pinned() []*Item {
	var out []*Item
	for _, item := range c.Items() {
		if item.IsPinned {
			out = append(out, item)
		}
	}
	return out
}

func (c *Catalog) ByCategory(id string) []*Item {
	var out []*Item
	for _, item := range c.Items() {
		if item.HasCategory(id) {
			out = append(out, item)
		}
	}
	return out
}

func (c *Catalog) ByID(id string) (*Item, bool) {
	for _, item := range c.Items() {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

func (c *Catalog) ByNumber(n int) (*Item, bool) {
	for _, item := range c.Items() {
		if item.Number == n {
			return item, true
		}
	}
	return nil, false
}

func (c *Catalog) Category(id string) (*Category, bool) {
	for _, category := range c.Categories() {
		if category.ID == id {
			return category, true
		}
	}
	return nil, false
}
