// Package compliance holds the behaviour every storage adapter must share.
package compliance

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/storage"
)

// Backend hands out fresh units of work against one store.
type Backend struct {
	Lists func() storage.Repository[domain.List]
	Items func() storage.Repository[domain.Item]
}

// RunStorageComplianceTest runs the shared suite. setup must return a backend
// over an empty store and a teardown func.
func RunStorageComplianceTest(t *testing.T, setup func(t *testing.T) (Backend, func())) {
	t.Run("AddAssignsFreshIDs", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		first := &domain.List{Title: "Work", Description: "Work items"}
		second := &domain.List{Title: "Personal"}
		repo := b.Lists()
		repo.Add(first)
		repo.Add(second)
		require.NoError(t, repo.Save(ctx))

		assert.Positive(t, first.ID)
		assert.Positive(t, second.ID)
		assert.NotEqual(t, first.ID, second.ID)

		fetched, err := b.Lists().FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, *first, fetched)

		fetched, err = b.Lists().FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Empty(t, fetched.Description)
	})

	t.Run("FindByIDMissing", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()

		_, err := b.Lists().FindByID(context.Background(), 424242)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("StagedChangesInvisibleUntilSave", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		repo := b.Lists()
		repo.Add(&domain.List{Title: "Pending"})

		n, err := b.Lists().Query().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, repo.Save(ctx))
		n, err = b.Lists().Query().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		// A second save has nothing left to apply.
		require.NoError(t, repo.Save(ctx))
		n, err = b.Lists().Query().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("SaveIsAtomic", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		list := seedList(t, b, "Home")

		good := &domain.Item{Title: "ok", Content: "c", DueDate: domain.Today(), ListID: list.ID}
		orphan := &domain.Item{Title: "orphan", Content: "c", DueDate: domain.Today(), ListID: list.ID + 1000}
		repo := b.Items()
		repo.Add(good)
		repo.Add(orphan)

		err := repo.Save(ctx)
		require.ErrorIs(t, err, storage.ErrConstraint)
		assert.Zero(t, good.ID, "id from a rolled back insert must be cleared")

		n, err := b.Items().Query().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("UpdatePersists", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		list := seedList(t, b, "Before")
		list.Title = "After"
		list.Description = "changed"

		repo := b.Lists()
		repo.Update(&list)
		require.NoError(t, repo.Save(ctx))

		fetched, err := b.Lists().FindByID(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, list, fetched)
	})

	t.Run("UpdateMissingConflicts", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		repo := b.Lists()
		repo.Update(&domain.List{ID: 987654, Title: "ghost"})
		assert.ErrorIs(t, repo.Save(ctx), storage.ErrConflict)
	})

	t.Run("RemoveMissingConflicts", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		repo := b.Items()
		repo.Remove(&domain.Item{ID: 987654})
		assert.ErrorIs(t, repo.Save(ctx), storage.ErrConflict)
	})

	t.Run("RemoveListCascadesToItems", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		doomed := seedList(t, b, "Doomed")
		kept := seedList(t, b, "Kept")
		seedItems(t, b, doomed.ID, "a", "b", "c")
		seedItems(t, b, kept.ID, "d")

		repo := b.Lists()
		repo.Remove(&doomed)
		require.NoError(t, repo.Save(ctx))

		n, err := b.Items().Query().Where(storage.Eq(domain.FieldListID, doomed.ID)).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = b.Items().Query().Where(storage.Eq(domain.FieldListID, kept.ID)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("IDsAreNotReused", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		first := seedList(t, b, "first")
		repo := b.Lists()
		repo.Remove(&first)
		require.NoError(t, repo.Save(ctx))

		second := seedList(t, b, "second")
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("LengthLimitsEnforced", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		repo := b.Lists()
		repo.Add(&domain.List{Title: strings.Repeat("x", domain.MaxListTitleLength+1)})
		assert.ErrorIs(t, repo.Save(ctx), storage.ErrConstraint)

		// Limits count characters, not bytes.
		repo = b.Lists()
		repo.Add(&domain.List{Title: strings.Repeat("ж", domain.MaxListTitleLength)})
		assert.NoError(t, repo.Save(ctx))
	})

	t.Run("QueryConditions", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		list := seedList(t, b, "Chores")
		day := domain.NewDate(2024, time.May, 1)
		repo := b.Items()
		repo.Add(&domain.Item{Title: "  Feed the cat  ", Content: "c", DueDate: day, Done: false, ListID: list.ID})
		repo.Add(&domain.Item{Title: "Clean kitchen", Content: "c", DueDate: day, Done: true, ListID: list.ID})
		repo.Add(&domain.Item{Title: "cat toys", Content: "c", DueDate: domain.NewDate(2024, time.May, 2), Done: true, ListID: list.ID})
		require.NoError(t, repo.Save(ctx))

		tests := []struct {
			name  string
			conds []storage.Cond
			want  []string
		}{
			{"contains is case sensitive", []storage.Cond{storage.Contains(domain.FieldTitle, "cat")}, []string{"  Feed the cat  ", "cat toys"}},
			{"contains trims the needle", []storage.Cond{storage.Contains(domain.FieldTitle, "  Feed  ")}, []string{"  Feed the cat  "}},
			{"column is trimmed before matching", []storage.Cond{{Field: domain.FieldTitle, Op: storage.OpContains, Value: "cat  "}}, nil},
			{"done equals", []storage.Cond{storage.Eq(domain.FieldDone, true)}, []string{"Clean kitchen", "cat toys"}},
			{"due date equals", []storage.Cond{storage.DateEq(domain.FieldDueDate, day)}, []string{"  Feed the cat  ", "Clean kitchen"}},
			{"conditions are combined", []storage.Cond{storage.Eq(domain.FieldDone, true), storage.DateEq(domain.FieldDueDate, day)}, []string{"Clean kitchen"}},
			{"no match", []storage.Cond{storage.Contains(domain.FieldTitle, "dog")}, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				q := b.Items().Query().OrderBy(domain.FieldID, storage.Asc)
				for _, c := range tt.conds {
					q = q.Where(c)
				}
				items, err := q.List(ctx)
				require.NoError(t, err)
				assert.ElementsMatch(t, tt.want, titles(items))

				n, err := q.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, len(tt.want), n)

				found, err := q.Any(ctx)
				require.NoError(t, err)
				assert.Equal(t, len(tt.want) > 0, found)
			})
		}
	})

	t.Run("OrderAndWindow", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		repo := b.Lists()
		for _, title := range []string{"delta", "alpha", "echo", "charlie", "bravo"} {
			repo.Add(&domain.List{Title: title})
		}
		require.NoError(t, repo.Save(ctx))

		base := b.Lists().Query().OrderBy(domain.FieldTitle, storage.Asc)

		page, err := base.Skip(1).Take(2).List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"bravo", "charlie"}, listTitles(page))

		// The window does not leak back into the shared base query.
		all, err := base.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 5)

		n, err := base.Skip(3).Take(1).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		tail, err := base.Skip(4).List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"echo"}, listTitles(tail))

		beyond, err := base.Skip(10).Take(5).List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, beyond)
		assert.Empty(t, beyond)

		desc, err := b.Lists().Query().OrderBy(domain.FieldTitle, storage.Desc).Take(1).List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"echo"}, listTitles(desc))
	})

	t.Run("UnknownField", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		_, err := b.Lists().Query().Where(storage.Eq("priority", 1)).List(ctx)
		assert.ErrorIs(t, err, storage.ErrUnknownField)

		_, err = b.Lists().Query().OrderBy("priority", storage.Asc).List(ctx)
		assert.ErrorIs(t, err, storage.ErrUnknownField)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		b, teardown := setup(t)
		defer teardown()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		repo := b.Lists()
		repo.Add(&domain.List{Title: "never"})
		assert.Error(t, repo.Save(ctx))

		n, err := b.Lists().Query().Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func seedList(t *testing.T, b Backend, title string) domain.List {
	t.Helper()
	list := domain.List{Title: title}
	repo := b.Lists()
	repo.Add(&list)
	require.NoError(t, repo.Save(context.Background()))
	return list
}

func seedItems(t *testing.T, b Backend, listID int64, titles ...string) {
	t.Helper()
	repo := b.Items()
	for _, title := range titles {
		repo.Add(&domain.Item{Title: title, Content: "content", DueDate: domain.Today(), ListID: listID})
	}
	require.NoError(t, repo.Save(context.Background()))
}

func titles(items []domain.Item) []string {
	var out []string
	for _, i := range items {
		out = append(out, i.Title)
	}
	return out
}

func listTitles(lists []domain.List) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l.Title)
	}
	return out
}
