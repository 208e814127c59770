package domain

// Field names used to filter and order queries. They match the JSON names of
// the public shapes; each store maps them to its own columns.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldContent     = "content"
	FieldDueDate     = "dueDate"
	FieldDone        = "done"
	FieldListID      = "listId"
)
