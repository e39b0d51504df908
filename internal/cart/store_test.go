package cart

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/internal/repository/memory"
	"github.com/uniassets/assetcart/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func product(id string, stock int) domain.CatalogItem {
	return domain.CatalogItem{
		ID:     id,
		Name:   "Product " + id,
		Code:   "P-" + id,
		Stock:  stock,
		Unit:   "pcs",
		Status: domain.ProductStatusAvailable,
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

func setup(t *testing.T, submitter Submitter) (*Store, *memory.CartStateRepository) {
	t.Helper()
	slot := memory.NewCartStateRepository()
	store := Open(context.Background(), "owner-1", slot, submitter, zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithLineIDGenerator(sequentialIDs()),
	)
	return store, slot
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("New line gets defaults", func(t *testing.T) {
		store, _ := setup(t, nil)

		line, err := store.AddItem(ctx, product("1", 10), 2, nil)
		require.NoError(t, err)

		assert.Equal(t, "line-1", line.ID)
		assert.Equal(t, 2, line.Quantity)
		assert.Equal(t, domain.PriorityNormal, line.Priority)
		assert.Equal(t, fixedNow, line.AddedAt)
		assert.Equal(t, fixedNow, line.Period.StartDate)
		assert.Equal(t, fixedNow.AddDate(0, 0, 7), line.Period.EndDate)
		assert.Equal(t, 7, line.Period.DurationDays)
		assert.False(t, line.Period.Flexible)
	})

	t.Run("Cumulative on same product", func(t *testing.T) {
		store, _ := setup(t, nil)

		_, err := store.AddItem(ctx, product("1", 10), 3, nil)
		require.NoError(t, err)
		line, err := store.AddItem(ctx, product("1", 10), 4, nil)
		require.NoError(t, err)

		assert.Equal(t, "line-1", line.ID)
		assert.Equal(t, 7, line.Quantity)
		assert.Len(t, store.Lines(), 1)
	})

	t.Run("Capacity exceeded on empty cart leaves it empty", func(t *testing.T) {
		store, slot := setup(t, nil)

		_, err := store.AddItem(ctx, product("1", 2), 3, nil)

		var capErr *errors.ErrCapacityExceeded
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 3, capErr.Requested)
		assert.Equal(t, 2, capErr.Available)
		assert.Empty(t, store.Lines())

		_, err = slot.Get(ctx, "owner-1")
		assert.Error(t, err, "nothing should have been persisted")
	})

	t.Run("Capacity exceeded on accumulation leaves line unchanged", func(t *testing.T) {
		store, _ := setup(t, nil)

		_, err := store.AddItem(ctx, product("1", 5), 4, nil)
		require.NoError(t, err)
		_, err = store.AddItem(ctx, product("1", 5), 2, nil)

		var capErr *errors.ErrCapacityExceeded
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 6, capErr.Requested)
		assert.Equal(t, 4, store.ItemQuantity("1"))
	})

	t.Run("Quantity equal to stock is accepted", func(t *testing.T) {
		store, _ := setup(t, nil)

		_, err := store.AddItem(ctx, product("1", 5), 2, nil)
		require.NoError(t, err)
		line, err := store.AddItem(ctx, product("1", 5), 3, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, line.Quantity)

		line, err = store.SetItemQuantity(ctx, product("2", 4), 4, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, line.Quantity)
	})

	t.Run("Huge quantity does not wrap around", func(t *testing.T) {
		store, _ := setup(t, nil)

		_, err := store.AddItem(ctx, product("1", 5), 1, nil)
		require.NoError(t, err)

		for _, quantity := range []int{math.MaxInt, math.MaxInt - 1} {
			_, err = store.AddItem(ctx, product("1", 5), quantity, nil)
			var capErr *errors.ErrCapacityExceeded
			require.ErrorAs(t, err, &capErr)
			assert.Positive(t, capErr.Requested)
			assert.Equal(t, 5, capErr.Available)
		}

		_, err = store.SetItemQuantity(ctx, product("1", 5), math.MaxInt, nil)
		var capErr *errors.ErrCapacityExceeded
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, math.MaxInt, capErr.Requested)

		assert.Equal(t, 1, store.ItemQuantity("1"))
		assert.Equal(t, 1, store.TotalItems())
	})

	t.Run("Invalid arguments", func(t *testing.T) {
		store, _ := setup(t, nil)

		tests := []struct {
			name     string
			product  domain.CatalogItem
			quantity int
			field    string
		}{
			{"zero quantity", product("1", 5), 0, "quantity"},
			{"negative quantity", product("1", 5), -1, "quantity"},
			{"negative stock", product("1", -1), 1, "stock"},
			{"missing id", product("", 5), 1, "product_id"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := store.AddItem(ctx, tt.product, tt.quantity, nil)
				var argErr *errors.ErrInvalidArgument
				require.ErrorAs(t, err, &argErr)
				assert.Equal(t, tt.field, argErr.Field)
			})
		}
		assert.Empty(t, store.Lines())
	})

	t.Run("Explicit period", func(t *testing.T) {
		store, _ := setup(t, nil)
		period := &domain.RequestPeriod{
			StartDate: fixedNow,
			EndDate:   fixedNow.Add(60 * time.Hour),
			Flexible:  true,
		}

		line, err := store.AddItem(ctx, product("1", 5), 1, period)
		require.NoError(t, err)
		assert.Equal(t, 3, line.Period.DurationDays)
		assert.True(t, line.Period.Flexible)

		_, err = store.AddItem(ctx, product("2", 5), 1, &domain.RequestPeriod{
			StartDate: fixedNow,
			EndDate:   fixedNow.Add(-time.Hour),
		})
		var argErr *errors.ErrInvalidArgument
		assert.ErrorAs(t, err, &argErr)
		assert.False(t, store.IsInCart("2"))
	})
}

func TestSetItemQuantity(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t, nil)

	_, err := store.SetItemQuantity(ctx, product("1", 5), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, store.ItemQuantity("1"))

	_, err = store.SetItemQuantity(ctx, product("1", 5), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.ItemQuantity("1"), "set replaces rather than accumulates")

	_, err = store.SetItemQuantity(ctx, product("1", 5), 6, nil)
	var capErr *errors.ErrCapacityExceeded
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, store.ItemQuantity("1"))

	_, err = store.SetItemQuantity(ctx, product("1", 5), 0, nil)
	var argErr *errors.ErrInvalidArgument
	assert.ErrorAs(t, err, &argErr)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t, nil)

	line, err := store.AddItem(ctx, product("1", 5), 1, nil)
	require.NoError(t, err)
	_, err = store.AddItem(ctx, product("2", 5), 1, nil)
	require.NoError(t, err)

	store.RemoveItem(ctx, line.ID)
	assert.False(t, store.IsInCart("1"))

	before := store.State()
	store.RemoveItem(ctx, line.ID)
	store.RemoveItem(ctx, "never-existed")
	assert.Equal(t, before, store.State())
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	for _, qty := range []int{0, -5} {
		t.Run(fmt.Sprintf("Quantity %d removes", qty), func(t *testing.T) {
			store, _ := setup(t, nil)
			line, err := store.AddItem(ctx, product("1", 5), 2, nil)
			require.NoError(t, err)

			require.NoError(t, store.UpdateQuantity(ctx, line.ID, qty))
			assert.Empty(t, store.Lines())
		})
	}

	t.Run("Replaces within snapshot stock", func(t *testing.T) {
		store, _ := setup(t, nil)
		line, err := store.AddItem(ctx, product("1", 5), 2, nil)
		require.NoError(t, err)

		require.NoError(t, store.UpdateQuantity(ctx, line.ID, 5))
		assert.Equal(t, 5, store.ItemQuantity("1"))
	})

	t.Run("Rechecks snapshot stock", func(t *testing.T) {
		store, _ := setup(t, nil)
		line, err := store.AddItem(ctx, product("1", 5), 2, nil)
		require.NoError(t, err)

		err = store.UpdateQuantity(ctx, line.ID, 6)
		var capErr *errors.ErrCapacityExceeded
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 2, store.ItemQuantity("1"))
	})

	t.Run("Unknown line", func(t *testing.T) {
		store, _ := setup(t, nil)

		var notFound *errors.ErrNotFound
		assert.ErrorAs(t, store.UpdateQuantity(ctx, "missing", 1), &notFound)
		assert.NoError(t, store.UpdateQuantity(ctx, "missing", 0))
	})
}

func TestLineMetadata(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t, nil)

	line, err := store.AddItem(ctx, product("1", 5), 1, nil)
	require.NoError(t, err)

	require.NoError(t, store.UpdateItemPurpose(ctx, line.ID, "thermal imaging"))
	require.NoError(t, store.UpdateItemNotes(ctx, line.ID, "handle with care"))
	require.NoError(t, store.UpdateItemPriority(ctx, line.ID, domain.PriorityUrgent))
	require.NoError(t, store.UpdateItemPeriod(ctx, line.ID, domain.RequestPeriod{
		StartDate: fixedNow,
		EndDate:   fixedNow.AddDate(0, 0, 2),
	}))

	got, ok := store.CartItem("1")
	require.True(t, ok)
	assert.Equal(t, "thermal imaging", got.Purpose)
	assert.Equal(t, "handle with care", got.Notes)
	assert.Equal(t, domain.PriorityUrgent, got.Priority)
	assert.Equal(t, 2, got.Period.DurationDays)

	var argErr *errors.ErrInvalidArgument
	assert.ErrorAs(t, store.UpdateItemPriority(ctx, line.ID, "CRITICAL"), &argErr)

	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, store.UpdateItemNotes(ctx, "missing", "x"), &notFound)
}

func TestValidateCart(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t, nil)

	assert.False(t, store.ValidateCart(), "empty cart")

	store.UpdateGlobalPurpose(ctx, "lab demo")
	assert.False(t, store.ValidateCart(), "purpose without lines")

	_, err := store.AddItem(ctx, product("1", 5), 1, nil)
	require.NoError(t, err)
	assert.True(t, store.ValidateCart())

	for _, purpose := range []string{"", "   ", "\t\n"} {
		store.UpdateGlobalPurpose(ctx, purpose)
		assert.False(t, store.ValidateCart(), "purpose %q", purpose)
	}
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t, nil)

	_, err := store.AddItem(ctx, product("1", 5), 1, nil)
	require.NoError(t, err)
	store.UpdateGlobalPurpose(ctx, "field trip")
	store.UpdateGlobalNotes(ctx, "pickup at 9")

	store.ClearCart(ctx)

	state := store.State()
	assert.Empty(t, state.Lines)
	assert.Empty(t, state.Purpose)
	assert.Empty(t, state.Notes)
}

func TestSelectors(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t, nil)

	_, err := store.AddItem(ctx, product("1", 5), 2, nil)
	require.NoError(t, err)
	_, err = store.AddItem(ctx, product("2", 5), 3, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, store.TotalItems())
	assert.Equal(t, 3, store.ItemQuantity("2"))
	assert.Equal(t, 0, store.ItemQuantity("99"))
	assert.True(t, store.IsInCart("1"))
	assert.False(t, store.IsInCart("99"))

	_, ok := store.CartItem("99")
	assert.False(t, ok)

	lines := store.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].Product.ID, "insertion order is display order")
	lines[0].Quantity = 100
	assert.Equal(t, 2, store.ItemQuantity("1"), "Lines returns a copy")
}

// TestTotalItemsInvariant drives random operation sequences and checks TotalItems after each step
func TestTotalItemsInvariant(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		store, _ := setup(t, nil)
		products := []domain.CatalogItem{product("1", 3), product("2", 10), product("3", 1)}

		quantity := func() int {
			switch rng.Intn(8) {
			case 0:
				return math.MaxInt
			case 1:
				return math.MaxInt - rng.Intn(3)
			default:
				return rng.Intn(4) + 1
			}
		}

		for step := 0; step < 40; step++ {
			p := products[rng.Intn(len(products))]
			switch rng.Intn(6) {
			case 0:
				_, _ = store.AddItem(ctx, p, quantity(), nil)
			case 1:
				_, _ = store.SetItemQuantity(ctx, p, quantity(), nil)
			case 2:
				if line, ok := store.CartItem(p.ID); ok {
					_ = store.UpdateQuantity(ctx, line.ID, rng.Intn(6)-2)
				}
			case 5:
				// Fill the line exactly to its stock.
				_, _ = store.SetItemQuantity(ctx, p, p.Stock, nil)
			case 3:
				if line, ok := store.CartItem(p.ID); ok {
					store.RemoveItem(ctx, line.ID)
				}
			case 4:
				store.RemoveItem(ctx, "missing")
			}

			sum := 0
			for _, line := range store.Lines() {
				sum += line.Quantity
				assert.Positive(t, line.Quantity)
				assert.LessOrEqual(t, line.Quantity, line.Product.Stock)
			}
			require.Equal(t, sum, store.TotalItems(), "run %d step %d", run, step)
		}
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("Rehydrates saved cart", func(t *testing.T) {
		store, slot := setup(t, nil)
		_, err := store.AddItem(ctx, product("1", 5), 2, nil)
		require.NoError(t, err)
		_, err = store.AddItem(ctx, product("2", 5), 1, nil)
		require.NoError(t, err)
		store.UpdateGlobalPurpose(ctx, "lab demo")
		store.UpdateGlobalNotes(ctx, "room 101")

		reopened := Open(ctx, "owner-1", slot, nil, zap.NewNop())

		assert.Equal(t, store.Lines(), reopened.Lines())
		assert.Equal(t, "lab demo", reopened.State().Purpose)
		assert.Equal(t, "room 101", reopened.State().Notes)
		assert.True(t, reopened.ValidateCart())
	})

	t.Run("Corrupt payload starts empty", func(t *testing.T) {
		slot := memory.NewCartStateRepository()
		require.NoError(t, slot.Save(ctx, "owner-1", []byte("{not json")))

		store := Open(ctx, "owner-1", slot, nil, zap.NewNop())
		assert.Empty(t, store.Lines())
		assert.NotNil(t, store.Lines())
	})

	t.Run("Missing items defaults to empty", func(t *testing.T) {
		slot := memory.NewCartStateRepository()
		require.NoError(t, slot.Save(ctx, "owner-1", []byte(`{"purpose":"kept"}`)))

		store := Open(ctx, "owner-1", slot, nil, zap.NewNop())
		assert.Empty(t, store.Lines())
		assert.Equal(t, "kept", store.State().Purpose)
	})

	t.Run("Invalid saved lines are dropped", func(t *testing.T) {
		slot := memory.NewCartStateRepository()
		require.NoError(t, slot.Save(ctx, "owner-1", []byte(`{"items":[
			{"id":"a","product":{"id":"1","stock":5},"quantity":2,"priority":"HIGH"},
			{"id":"b","product":{"id":"2","stock":5},"quantity":0},
			{"id":"","product":{"id":"3","stock":5},"quantity":1},
			{"id":"d","product":{"id":"4","stock":5},"quantity":1,"priority":"bogus"}
		]}`)))

		store := Open(ctx, "owner-1", slot, nil, zap.NewNop())
		lines := store.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, domain.PriorityHigh, lines[0].Priority)
		assert.Equal(t, domain.PriorityNormal, lines[1].Priority)
	})

	t.Run("Saved lines are held to their stock snapshot", func(t *testing.T) {
		slot := memory.NewCartStateRepository()
		require.NoError(t, slot.Save(ctx, "owner-1", []byte(`{"items":[
			{"id":"a","product":{"id":"1","stock":2},"quantity":50},
			{"id":"b","product":{"id":"1","stock":2},"quantity":1},
			{"id":"c","product":{"id":"9","stock":-4},"quantity":1},
			{"id":"d","product":{"id":"5","stock":0},"quantity":1},
			{"id":"a","product":{"id":"6","stock":3},"quantity":1},
			{"id":"e","product":{"id":"7","stock":3},"quantity":1},
			{"id":"f","product":{"id":"7","stock":3},"quantity":1}
		]}`)))

		store := Open(ctx, "owner-1", slot, nil, zap.NewNop())
		lines := store.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "a", lines[0].ID)
		assert.Equal(t, 2, store.ItemQuantity("1"))
		assert.Equal(t, "e", lines[1].ID)
		assert.Equal(t, 2, store.ItemQuantity("7"))
		assert.False(t, store.IsInCart("9"))
		assert.False(t, store.IsInCart("6"))
		assert.Equal(t, 4, store.TotalItems())
	})

	t.Run("Transient fields are not persisted", func(t *testing.T) {
		store, slot := setup(t, nil)
		store.UpdateGlobalPurpose(ctx, "x")

		raw, err := slot.Get(ctx, "owner-1")
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "Loading")
		assert.NotContains(t, string(raw), "LastError")
	})

	t.Run("Nil slot keeps cart in memory", func(t *testing.T) {
		store := Open(ctx, "owner-1", nil, nil, zap.NewNop())
		_, err := store.AddItem(ctx, product("1", 5), 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, store.TotalItems())
	})
}

func TestWithDefaultPeriodDays(t *testing.T) {
	store := Open(context.Background(), "owner-1", nil, nil, zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithDefaultPeriodDays(14),
	)

	line, err := store.AddItem(context.Background(), product("1", 5), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 14, line.Period.DurationDays)
	assert.Equal(t, fixedNow.AddDate(0, 0, 14), line.Period.EndDate)
}
