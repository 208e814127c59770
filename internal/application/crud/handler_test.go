package crud_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todolist/internal/application/crud"
	"github.com/rezkam/todolist/internal/application/pagination"
	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/storage"
	"github.com/rezkam/todolist/internal/storage/sqlstore"
)

type listShape struct {
	ID    int64
	Title string
}

func (s listShape) ShapeID() int64 { return s.ID }

type listMapper struct{}

func (listMapper) ToShape(l domain.List) listShape { return listShape{ID: l.ID, Title: l.Title} }

func (listMapper) ToEntity(id int64, s listShape) domain.List {
	return domain.List{ID: id, Title: s.Title}
}

type noFilter struct{}

var requireTitle = crud.ValidatorFunc[listShape](func(_ context.Context, s listShape) error {
	if strings.TrimSpace(s.Title) == "" {
		return domain.NewValidationError("title", "is required")
	}
	return nil
})

// conflictingRepository reports every Save as a conflict without touching the store.
type conflictingRepository struct {
	storage.Repository[domain.List]
}

func (conflictingRepository) Save(context.Context) error {
	return storage.ErrConflict
}

type fixture struct {
	store   *sqlstore.Store
	handler *crud.Handler[domain.List, listShape, noFilter]
}

func newFixture(t *testing.T, repo func(*sqlstore.Store) func() storage.Repository[domain.List]) fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(ctx))

	if repo == nil {
		repo = func(s *sqlstore.Store) func() storage.Repository[domain.List] {
			return sqlstore.Factory(s, sqlstore.ListSchema)
		}
	}

	return fixture{
		store: store,
		handler: crud.New(crud.Options[domain.List, listShape, noFilter]{
			Resource:   "list",
			Repository: repo(store),
			Mapper:     listMapper{},
			Validator:  requireTitle,
		}),
	}
}

func (f fixture) seed(t *testing.T, titles ...string) []int64 {
	t.Helper()
	repo := f.store.Lists()
	lists := make([]domain.List, len(titles))
	for i, title := range titles {
		lists[i] = domain.List{Title: title}
		repo.Add(&lists[i])
	}
	require.NoError(t, repo.Save(context.Background()))

	ids := make([]int64, len(lists))
	for i := range lists {
		ids[i] = lists[i].ID
	}
	return ids
}

func TestNew_RequiresRepositoryAndMapper(t *testing.T) {
	assert.Panics(t, func() {
		crud.New(crud.Options[domain.List, listShape, noFilter]{Mapper: listMapper{}})
	})
	assert.Panics(t, func() {
		crud.New(crud.Options[domain.List, listShape, noFilter]{
			Repository: func() storage.Repository[domain.List] { return nil },
		})
	})
}

func TestHandler_CreateAssignsIDAndIgnoresBodyID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.handler.Create(ctx, listShape{ID: 999, Title: "groceries"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, int64(999), created.ID)
	assert.Equal(t, "groceries", created.Title)

	got, err := f.handler.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestHandler_CreateRejectsInvalidShape(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.handler.Create(context.Background(), listShape{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	count, err := f.store.Lists().Query().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandler_GetMissing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.handler.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandler_Update(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	ids := f.seed(t, "before")

	t.Run("replaces stored values", func(t *testing.T) {
		require.NoError(t, f.handler.Update(ctx, ids[0], listShape{ID: ids[0], Title: "after"}))

		got, err := f.handler.Get(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "after", got.Title)
	})

	t.Run("id mismatch is rejected before anything else", func(t *testing.T) {
		err := f.handler.Update(ctx, ids[0], listShape{ID: ids[0] + 1, Title: ""})
		assert.ErrorIs(t, err, domain.ErrIDMismatch)
		assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid shape", func(t *testing.T) {
		err := f.handler.Update(ctx, ids[0], listShape{ID: ids[0]})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		err := f.handler.Update(ctx, 4242, listShape{ID: 4242, Title: "ghost"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestHandler_UpdateConflictWithRowPresentIsFatal(t *testing.T) {
	f := newFixture(t, func(s *sqlstore.Store) func() storage.Repository[domain.List] {
		return func() storage.Repository[domain.List] {
			return conflictingRepository{Repository: s.Lists()}
		}
	})
	ids := f.seed(t, "contested")

	err := f.handler.Update(context.Background(), ids[0], listShape{ID: ids[0], Title: "mine"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestHandler_Delete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	ids := f.seed(t, "doomed", "kept")

	removed, err := f.handler.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, listShape{ID: ids[0], Title: "doomed"}, removed)

	_, err = f.handler.Get(ctx, ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.handler.Delete(ctx, ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.handler.Get(ctx, ids[1])
	assert.NoError(t, err)
}

func TestHandler_DeleteConflictIsNotFound(t *testing.T) {
	f := newFixture(t, func(s *sqlstore.Store) func() storage.Repository[domain.List] {
		return func() storage.Repository[domain.List] {
			return conflictingRepository{Repository: s.Lists()}
		}
	})
	ids := f.seed(t, "racing")

	_, err := f.handler.Delete(context.Background(), ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandler_List(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seed(t, "b", "a", "c")

	page, err := f.handler.List(ctx, crud.Scope{}, noFilter{}, pagination.Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, pagination.DefaultPageSize, page.PageSize)
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "a", page.Data[0].Title)
}

func TestHandler_ListScoped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	ids := f.seed(t, "only")

	scope := crud.Scope{Conds: []storage.Cond{storage.Eq(domain.FieldID, ids[0])}, RequireNonEmpty: true}
	page, err := f.handler.List(ctx, scope, noFilter{}, pagination.Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)

	empty := crud.Scope{Conds: []storage.Cond{storage.Eq(domain.FieldID, ids[0]+100)}, RequireNonEmpty: true}
	_, err = f.handler.List(ctx, empty, noFilter{}, pagination.Request{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty.RequireNonEmpty = false
	page, err = f.handler.List(ctx, empty, noFilter{}, pagination.Request{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Data)
}

func TestHandler_ListRejectsNegativePage(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.handler.List(context.Background(), crud.Scope{}, noFilter{}, pagination.Request{PageIndex: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandler_StorageErrorsAreNotDomainErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.handler.Get(ctx, 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestHandler_Resource(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, "list", f.handler.Resource())
}
