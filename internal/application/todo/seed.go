package todo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rezkam/todolist/internal/domain"
)

type seedList struct {
	list  domain.List
	items []domain.Item
}

func preconfigured(today domain.Date) []seedList {
	return []seedList{
		{
			list: domain.List{Title: "Work", Description: "Work tasks"},
			items: []domain.Item{
				{Title: "ToDoList", Content: "Finish the project", Done: true, DueDate: today},
			},
		},
		{
			list: domain.List{Title: "Personal", Description: "Home chores"},
			items: []domain.Item{
				{Title: "Pets", Content: "Feed the cat", Done: false, DueDate: today},
				{Title: "Cleaning", Content: "Tidy up the kitchen", Done: true, DueDate: today},
			},
		},
	}
}

// Seed inserts the starter lists and items when the store has no lists.
// It reports whether anything was written.
func Seed(ctx context.Context, repos Repositories) (bool, error) {
	hasLists, err := repos.Lists().Query().Any(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing lists: %w", err)
	}
	if hasLists {
		slog.InfoContext(ctx, "store already has lists, skipping seed")
		return false, nil
	}

	data := preconfigured(domain.Today())

	// Lists first so their ids exist before items reference them.
	lists := repos.Lists()
	for i := range data {
		lists.Add(&data[i].list)
	}
	if err := lists.Save(ctx); err != nil {
		return false, fmt.Errorf("failed to seed lists: %w", err)
	}

	items := repos.Items()
	count := 0
	for i := range data {
		for j := range data[i].items {
			data[i].items[j].ListID = data[i].list.ID
			items.Add(&data[i].items[j])
			count++
		}
	}
	if err := items.Save(ctx); err != nil {
		return false, fmt.Errorf("failed to seed items: %w", err)
	}

	slog.InfoContext(ctx, "seeded store", "lists", len(data), "items", count)
	return true, nil
}
