package todo

import (
	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/ptr"
)

// ListDTO is the public shape of a list.
type ListDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description" validate:"max=100"`
}

// ShapeID returns the id carried in the body.
func (d ListDTO) ShapeID() int64 { return d.ID }

// ItemDTO is the public shape of an item.
type ItemDTO struct {
	ID      int64        `json:"id"`
	Title   string       `json:"title" validate:"required,max=50"`
	Content string       `json:"content" validate:"required,max=1000"`
	DueDate *domain.Date `json:"dueDate" validate:"required"`
	Done    bool         `json:"done"`
	ListID  int64        `json:"listId" validate:"required,gt=0"`
}

// ShapeID returns the id carried in the body.
func (d ItemDTO) ShapeID() int64 { return d.ID }

// ListMapper converts lists.
type ListMapper struct{}

func (ListMapper) ToShape(l domain.List) ListDTO {
	return ListDTO{ID: l.ID, Title: l.Title, Description: l.Description}
}

func (ListMapper) ToEntity(id int64, d ListDTO) domain.List {
	return domain.List{ID: id, Title: d.Title, Description: d.Description}
}

// ItemMapper converts items.
type ItemMapper struct{}

func (ItemMapper) ToShape(i domain.Item) ItemDTO {
	return ItemDTO{
		ID:      i.ID,
		Title:   i.Title,
		Content: i.Content,
		DueDate: ptr.To(i.DueDate),
		Done:    i.Done,
		ListID:  i.ListID,
	}
}

func (ItemMapper) ToEntity(id int64, d ItemDTO) domain.Item {
	return domain.Item{
		ID:      id,
		Title:   d.Title,
		Content: d.Content,
		DueDate: ptr.Deref(d.DueDate, domain.Date{}),
		Done:    d.Done,
		ListID:  d.ListID,
	}
}
