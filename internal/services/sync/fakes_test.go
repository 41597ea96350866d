package sync

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

type fakeTx struct {
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (t *fakeTx) IsOpen() bool { return !t.committed && !t.rolledBack }

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.db.commitErr != nil {
		return t.db.commitErr
	}
	t.committed = true
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.IsOpen() {
		t.rolledBack = true
		t.db.rollbacks++
	}
	return nil
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, errors.New("not implemented")
}

func (t *fakeTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return errors.New("not implemented")
}

func (t *fakeTx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return errors.New("not implemented")
}

type fakeDB struct {
	commits   int
	rollbacks int
	commitErr error
}

func (d *fakeDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	return ctx, &fakeTx{db: d}, nil
}

type fakeMealPlans struct{ rows []models.MealPlan }

func (f *fakeMealPlans) Insert(ctx context.Context, p models.MealPlan) (bool, error) {
	if slices.ContainsFunc(f.rows, func(r models.MealPlan) bool { return r.ID == p.ID }) {
		return false, nil
	}
	f.rows = append(f.rows, p)
	return true, nil
}

func (f *fakeMealPlans) List(ctx context.Context) ([]models.MealPlan, error) { return f.rows, nil }

func (f *fakeMealPlans) Delete(ctx context.Context, id string) (bool, error) {
	n := len(f.rows)
	f.rows = slices.DeleteFunc(f.rows, func(r models.MealPlan) bool { return r.ID == id })
	return len(f.rows) < n, nil
}

type fakeMeals struct{ rows []models.Meal }

func (f *fakeMeals) Insert(ctx context.Context, m models.Meal) (bool, error) {
	f.rows = append(f.rows, m)
	return true, nil
}

func (f *fakeMeals) Update(ctx context.Context, id string, p models.MealPatch) (bool, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i] = f.rows[i].WithPatch(p)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMeals) List(ctx context.Context) ([]models.Meal, error) { return f.rows, nil }

func (f *fakeMeals) Delete(ctx context.Context, id string) (bool, error) {
	f.rows = slices.DeleteFunc(f.rows, func(r models.Meal) bool { return r.ID == id })
	return true, nil
}

type fakeLists struct{ rows []models.ShoppingList }

func (f *fakeLists) Insert(ctx context.Context, l models.ShoppingList) (bool, error) {
	f.rows = append(f.rows, l)
	return true, nil
}

func (f *fakeLists) Update(ctx context.Context, id string, p models.ShoppingListPatch) (bool, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i] = f.rows[i].WithPatch(p)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLists) List(ctx context.Context) ([]models.ShoppingList, error) { return f.rows, nil }

func (f *fakeLists) Delete(ctx context.Context, id string) (bool, error) {
	f.rows = slices.DeleteFunc(f.rows, func(r models.ShoppingList) bool { return r.ID == id })
	return true, nil
}

type fakeItems struct {
	rows      []models.ShoppingListItem
	insertErr error
}

func (f *fakeItems) Insert(ctx context.Context, i models.ShoppingListItem) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	f.rows = append(f.rows, i)
	return true, nil
}

func (f *fakeItems) Update(ctx context.Context, id string, p models.ShoppingListItemPatch) (bool, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i] = f.rows[i].WithPatch(p)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeItems) List(ctx context.Context) ([]models.ShoppingListItem, error) { return f.rows, nil }

func (f *fakeItems) Delete(ctx context.Context, id string) (bool, error) {
	n := len(f.rows)
	f.rows = slices.DeleteFunc(f.rows, func(r models.ShoppingListItem) bool { return r.ID == id })
	return len(f.rows) < n, nil
}

type fakeCatalog struct{ rows []models.CommonGroceryItem }

func (f *fakeCatalog) List(ctx context.Context) ([]models.CommonGroceryItem, error) {
	return f.rows, nil
}

func (f *fakeCatalog) IncrementUseCount(ctx context.Context, category models.Category, name string) (bool, error) {
	for i := range f.rows {
		if f.rows[i].Category == category && strings.EqualFold(f.rows[i].Name, strings.TrimSpace(name)) {
			f.rows[i].UseCount++
			return true, nil
		}
	}
	return false, nil
}

type fakeApplied struct {
	ids    map[string]string
	pruned time.Time
	pruneN int64
}

func (f *fakeApplied) Record(ctx context.Context, m models.Mutation, clientID string) (bool, error) {
	if _, ok := f.ids[m.ID]; ok {
		return false, nil
	}
	f.ids[m.ID] = clientID
	return true, nil
}

func (f *fakeApplied) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	f.pruned = olderThan
	return f.pruneN, nil
}

type recordingNotifier struct{ events []models.ChangeEvent }

func (n *recordingNotifier) Notify(ctx context.Context, event models.ChangeEvent) {
	n.events = append(n.events, event)
}
