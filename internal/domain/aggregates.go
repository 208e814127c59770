package domain

// Field limits shared by validation, the OpenAPI document and the schema.
const (
	MaxListTitleLength       = 50
	MaxListDescriptionLength = 100
	MaxItemTitleLength       = 50
	MaxItemContentLength     = 1000
)

// List is the aggregate root owning a set of items.
//
// Items are not loaded with the list. They are fetched through the items
// collection scoped by ListID, and removed by the store when the list is deleted.
type List struct {
	ID          int64
	Title       string
	Description string
}

// EntityID returns the store-assigned identifier.
func (l List) EntityID() int64 {
	return l.ID
}

// Item is a single task inside a list.
type Item struct {
	ID      int64
	Title   string
	Content string
	DueDate Date
	Done    bool

	ListID int64 // Foreign key to List
}

// EntityID returns the store-assigned identifier.
func (i Item) EntityID() int64 {
	return i.ID
}
