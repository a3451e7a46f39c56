package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/store"
	"budget/internal/store/memory"
	"budget/internal/store/storetest"
)

type recordingPublisher struct {
	events []*amqp.ItemEventMessage
	err    error
	closed bool
}

func (p *recordingPublisher) PublishItemEvent(_ context.Context, msg *amqp.ItemEventMessage) error {
	p.events = append(p.events, msg)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newService(t *testing.T) (*ItemService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return NewItemService(memory.New(), pub, nil), pub
}

func count(t *testing.T, svc *ItemService, table string) int {
	t.Helper()
	items, err := svc.List(context.Background(), table)
	require.NoError(t, err)
	return len(items)
}

func TestItemService_AddPublishesEvent(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, "holiday", storetest.Item("Flights", 25000, 3, core.Monthly))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	if ev.Type != amqp.EventItemAdded || ev.ID != id || ev.Table != "holiday" || ev.Cost != 25000 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestItemService_AddRejectsInvalidItem(t *testing.T) {
	svc, pub := newService(t)

	_, err := svc.Add(context.Background(), "", storetest.Item("Rent", -1, 5, core.Monthly))

	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Add() error = %v, want ValidationError", err)
	}
	if !errors.Is(err, core.ErrNegativeCost) {
		t.Errorf("Add() error = %v, want ErrNegativeCost", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events for a rejected item", len(pub.events))
	}
}

func TestItemService_PublishFailureDoesNotFailAdd(t *testing.T) {
	svc, pub := newService(t)
	pub.err = errors.New("connection refused")

	_, err := svc.Add(context.Background(), "", storetest.Item("Rent", 90000, 10, core.Monthly))

	require.NoError(t, err)
	require.Equal(t, 1, count(t, svc, ""))
}

func TestItemService_WithoutPublisher(t *testing.T) {
	svc := NewItemService(memory.New(), nil, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "", storetest.Item("Rent", 90000, 10, core.Monthly))
	require.NoError(t, err)
	outcome, err := svc.DeleteByTitle(ctx, "", "Rent")
	require.NoError(t, err)
	require.Equal(t, Deleted, outcome)
	require.NoError(t, svc.Close())
}

func TestItemService_Search(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, it := range []core.Item{
		storetest.Item("Rent", 90000, 10, core.Monthly),
		storetest.Item("Food", 6000, 8, core.Weekly),
		storetest.Item("Gym", 3000, 2, core.Monthly),
	} {
		_, err := svc.Add(ctx, "", it)
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		field   string
		value   string
		want    []string
		wantErr bool
	}{
		{name: "neither lists all", want: []string{"Rent", "Food", "Gym"}},
		{name: "by interval", field: "interval", value: "monthly", want: []string{"Rent", "Gym"}},
		{name: "by cost", field: "cost", value: "6000", want: []string{"Food"}},
		{name: "no match", field: "title", value: "Car", want: []string{}},
		{name: "field without value", field: "title", wantErr: true},
		{name: "value without field", value: "Rent", wantErr: true},
		{name: "unknown field", field: "colour", value: "red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Search(ctx, "", tt.field, tt.value)
			if tt.wantErr {
				if !errors.Is(err, store.ErrInvalidQuery) {
					t.Fatalf("Search() error = %v, want ErrInvalidQuery", err)
				}
				return
			}
			require.NoError(t, err)
			titles := make([]string, len(got))
			for i, it := range got {
				titles[i] = it.Title
			}
			if diff := cmp.Diff(tt.want, titles); diff != "" {
				t.Errorf("Search() titles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItemService_ListSortsByPriority(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, it := range []core.Item{
		storetest.Item("Gym", 3000, 2, core.Monthly),
		storetest.Item("Rent", 90000, 10, core.Monthly),
		storetest.Item("Phone", 1500, 2, core.Monthly),
		storetest.Item("Food", 6000, 8, core.Weekly),
	} {
		_, err := svc.Add(ctx, "", it)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, "")
	require.NoError(t, err)

	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.Title
	}
	want := []string{"Rent", "Food", "Gym", "Phone"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}
}

func TestItemService_DeleteByTitle(t *testing.T) {
	t.Run("ambiguous title leaves store unchanged", func(t *testing.T) {
		svc, pub := newService(t)
		ctx := context.Background()
		for _, cost := range []int64{100, 200} {
			_, err := svc.Add(ctx, "", storetest.Item("Insurance", cost, 5, core.Monthly))
			require.NoError(t, err)
		}
		before := count(t, svc, "")

		outcome, err := svc.DeleteByTitle(ctx, "", "Insurance")

		require.NoError(t, err)
		require.Equal(t, Ambiguous, outcome)
		require.Equal(t, before, count(t, svc, ""))
		require.Equal(t, []string{amqp.EventItemAdded, amqp.EventItemAdded}, pub.types())
	})

	t.Run("missing title", func(t *testing.T) {
		svc, _ := newService(t)

		outcome, err := svc.DeleteByTitle(context.Background(), "", "Nothing")

		require.NoError(t, err)
		require.Equal(t, NotFound, outcome)
	})

	t.Run("single match is deleted", func(t *testing.T) {
		svc, pub := newService(t)
		ctx := context.Background()
		id, err := svc.Add(ctx, "", storetest.Item("Gym", 3000, 2, core.Monthly))
		require.NoError(t, err)
		_, err = svc.Add(ctx, "", storetest.Item("Rent", 90000, 10, core.Monthly))
		require.NoError(t, err)

		outcome, err := svc.DeleteByTitle(ctx, "", "Gym")

		require.NoError(t, err)
		require.Equal(t, Deleted, outcome)
		require.Equal(t, 1, count(t, svc, ""))
		last := pub.events[len(pub.events)-1]
		require.Equal(t, amqp.EventItemDeleted, last.Type)
		require.Equal(t, id, last.ID)
	})

	t.Run("tables are independent", func(t *testing.T) {
		svc, _ := newService(t)
		ctx := context.Background()
		_, err := svc.Add(ctx, "", storetest.Item("Gym", 3000, 2, core.Monthly))
		require.NoError(t, err)
		_, err = svc.Add(ctx, "holiday", storetest.Item("Gym", 3000, 2, core.Monthly))
		require.NoError(t, err)

		outcome, err := svc.DeleteByTitle(ctx, "holiday", "Gym")

		require.NoError(t, err)
		require.Equal(t, Deleted, outcome)
		require.Equal(t, 1, count(t, svc, ""))
		require.Equal(t, 0, count(t, svc, "holiday"))
	})
}

func TestItemService_Delete(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()
	for _, it := range []core.Item{
		storetest.Item("Gym", 3000, 2, core.Monthly),
		storetest.Item("Phone", 1500, 2, core.Monthly),
		storetest.Item("Rent", 90000, 10, core.Monthly),
	} {
		_, err := svc.Add(ctx, "", it)
		require.NoError(t, err)
	}

	n, err := svc.Delete(ctx, "", "priority", "2")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, count(t, svc, ""))
	require.Len(t, pub.events, 5)

	n, err = svc.Delete(ctx, "", "priority", "2")
	require.NoError(t, err)
	require.Equal(t, 0, n)

	_, err = svc.Delete(ctx, "", "", "")
	require.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestItemService_Calculate(t *testing.T) {
	tests := []struct {
		name         string
		pay          int64
		items        []core.Item
		wantRemain   int64
		wantFunded   []string
		wantUnfunded []string
	}{
		{
			name: "everything funded",
			pay:  1000,
			items: []core.Item{
				storetest.Item("B", 500, 5, core.Weekly),
				storetest.Item("A", 300, 10, core.Weekly),
			},
			wantRemain:   200,
			wantFunded:   []string{"A", "B"},
			wantUnfunded: []string{},
		},
		{
			name: "money runs out",
			pay:  400,
			items: []core.Item{
				storetest.Item("A", 300, 10, core.Weekly),
				storetest.Item("B", 500, 5, core.Weekly),
			},
			wantRemain:   100,
			wantFunded:   []string{"A"},
			wantUnfunded: []string{"B"},
		},
		{
			name:         "monthly cost is a third",
			pay:          1000,
			items:        []core.Item{storetest.Item("M", 300, 1, core.Monthly)},
			wantRemain:   900,
			wantFunded:   []string{"M"},
			wantUnfunded: []string{},
		},
		{
			name:         "empty table",
			pay:          500,
			wantRemain:   500,
			wantFunded:   []string{},
			wantUnfunded: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)
			ctx := context.Background()
			for _, it := range tt.items {
				_, err := svc.Add(ctx, "", it)
				require.NoError(t, err)
			}

			summary, err := svc.Calculate(ctx, "", tt.pay)
			require.NoError(t, err)

			if summary.Remaining.Cents != tt.wantRemain {
				t.Errorf("Remaining = %d, want %d", summary.Remaining.Cents, tt.wantRemain)
			}
			if summary.Spent.Cents != tt.pay-tt.wantRemain {
				t.Errorf("Spent = %d, want %d", summary.Spent.Cents, tt.pay-tt.wantRemain)
			}
			if diff := cmp.Diff(tt.wantFunded, itemTitles(summary.Result.Funded)); diff != "" {
				t.Errorf("funded mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantUnfunded, itemTitles(summary.Result.Unfunded)); diff != "" {
				t.Errorf("unfunded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItemService_CalculateRejectsNegativePay(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Calculate(context.Background(), "", -1)

	require.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestItemService_Tables(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, "holiday", storetest.Item("Flights", 25000, 3, core.Monthly))
	require.NoError(t, err)

	tables, err := svc.Tables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{store.DefaultTable, "holiday"}, tables)
}

func TestItemService_CloseClosesPublisher(t *testing.T) {
	svc, pub := newService(t)

	require.NoError(t, svc.Close())
	require.True(t, pub.closed)
}

func TestDeleteOutcome_String(t *testing.T) {
	for outcome, want := range map[DeleteOutcome]string{
		Deleted:          "deleted",
		NotFound:         "not found",
		Ambiguous:        "ambiguous",
		DeleteOutcome(7): "DeleteOutcome(7)",
	} {
		if got := outcome.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(outcome), got, want)
		}
	}
}

func itemTitles(items []core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}
