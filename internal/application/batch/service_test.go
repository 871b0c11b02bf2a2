package batch

import (
	"context"
	"testing"

	"github.com/eccennah/AuditStock/internal/domain/auth"
	domain "github.com/eccennah/AuditStock/internal/domain/batch"
	domproduct "github.com/eccennah/AuditStock/internal/domain/product"
	"github.com/eccennah/AuditStock/internal/infrastructure/clock"
	"github.com/eccennah/AuditStock/internal/infrastructure/id"
	"github.com/eccennah/AuditStock/internal/infrastructure/memory"
	"github.com/eccennah/AuditStock/internal/infrastructure/serial"
	"github.com/eccennah/AuditStock/internal/observability"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	products *memory.ProductRepository
	ids      *id.Allocator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	roles := memory.NewRoleStore("owner")
	require.NoError(t, roles.Grant(context.Background(), "owner", "carol", auth.RoleCashier))

	products := memory.NewProductRepository()
	ids := id.NewAllocator(1)
	svc := NewService(
		memory.NewBatchRepository(),
		products,
		roles,
		ids,
		clock.NewLogical(),
		serial.NewGate(),
		nil,
		observability.Nop(),
	)
	return &fixture{svc: svc, products: products, ids: ids}
}

func (f *fixture) addProduct(t *testing.T, id uint64, stock int64) {
	t.Helper()
	p, err := domproduct.New("Widget", 100, stock)
	require.NoError(t, err)
	p.ID = id
	require.NoError(t, f.products.Insert(context.Background(), p))
}

func (f *fixture) setStock(t *testing.T, id uint64, stock int64) {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	p.Stock = stock
	require.NoError(t, f.products.Update(context.Background(), p))
}

func (f *fixture) stock(t *testing.T, id uint64) int64 {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func items(pairs ...[2]int64) []domain.LineItem {
	out := make([]domain.LineItem, len(pairs))
	for i, p := range pairs {
		out[i] = domain.LineItem{ProductID: uint64(p[0]), Quantity: p[1]}
	}
	return out
}

func TestBatchCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyBatch", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(ctx, "carol", nil)
		require.ErrorIs(t, err, domain.ErrEmpty)
	})

	t.Run("TooManyItems", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 1000)

		oversized := make([]domain.LineItem, domain.MaxItems+1)
		for i := range oversized {
			oversized[i] = domain.LineItem{ProductID: 1, Quantity: 1}
		}
		_, err := f.svc.Create(ctx, "carol", oversized)
		require.ErrorIs(t, err, domain.ErrTooManyItems)
	})

	t.Run("RejectsNonCashier", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)

		_, err := f.svc.Create(ctx, "mallory", items([2]int64{1, 5}))
		require.ErrorIs(t, err, auth.ErrNotAuthorized)
	})

	t.Run("AnyFailingItemFailsTheWholeCall", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)

		// Second item exceeds stock: nothing persists, no id is consumed.
		_, err := f.svc.Create(ctx, "carol", items([2]int64{1, 5}, [2]int64{1, 20}))
		require.ErrorIs(t, err, domproduct.ErrInsufficientStock)
		require.Equal(t, uint64(1), f.ids.Peek())

		// Zero quantity fails the same way.
		_, err = f.svc.Create(ctx, "carol", items([2]int64{1, 0}))
		require.ErrorIs(t, err, domproduct.ErrInsufficientStock)

		// Unknown product fails the same way.
		_, err = f.svc.Create(ctx, "carol", items([2]int64{9, 1}))
		require.ErrorIs(t, err, domproduct.ErrInsufficientStock)

		// No stock moved either.
		require.Equal(t, int64(10), f.stock(t, 1))
	})

	t.Run("StoresHeaderAndItems", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)
		f.addProduct(t, 2, 20)

		batchID, err := f.svc.Create(ctx, "carol", items([2]int64{1, 5}, [2]int64{2, 7}))
		require.NoError(t, err)
		require.Equal(t, uint64(1), batchID)

		b, err := f.svc.Get(ctx, batchID)
		require.NoError(t, err)
		require.False(t, b.Finalized)
		require.Equal(t, 2, b.ItemCount)
		require.Equal(t, auth.Identity("carol"), b.CreatedBy)

		it, err := f.svc.GetItem(ctx, batchID, 1)
		require.NoError(t, err)
		require.Equal(t, uint64(2), it.ProductID)
		require.Equal(t, int64(7), it.Quantity)

		_, err = f.svc.GetItem(ctx, batchID, 2)
		require.ErrorIs(t, err, domain.ErrItemNotFound)

		// Creation does not move stock.
		require.Equal(t, int64(10), f.stock(t, 1))
		require.Equal(t, int64(20), f.stock(t, 2))
	})
}

func TestBatchFinalize(t *testing.T) {
	ctx := context.Background()

	t.Run("DeductsEveryItem", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)
		f.addProduct(t, 2, 20)

		batchID, err := f.svc.Create(ctx, "carol", items([2]int64{1, 5}, [2]int64{2, 7}))
		require.NoError(t, err)

		require.NoError(t, f.svc.Finalize(ctx, "carol", batchID))
		require.Equal(t, int64(5), f.stock(t, 1))
		require.Equal(t, int64(13), f.stock(t, 2))

		b, err := f.svc.Get(ctx, batchID)
		require.NoError(t, err)
		require.True(t, b.Finalized)
	})

	t.Run("SecondFinalizeFails", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)

		batchID, err := f.svc.Create(ctx, "carol", items([2]int64{1, 5}))
		require.NoError(t, err)
		require.NoError(t, f.svc.Finalize(ctx, "carol", batchID))

		err = f.svc.Finalize(ctx, "carol", batchID)
		require.ErrorIs(t, err, domain.ErrAlreadyFinalized)
		require.Equal(t, int64(5), f.stock(t, 1))
	})

	t.Run("UnknownBatch", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Finalize(ctx, "carol", 5)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("RejectsNonCashier", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)

		batchID, err := f.svc.Create(ctx, "carol", items([2]int64{1, 5}))
		require.NoError(t, err)

		err = f.svc.Finalize(ctx, "mallory", batchID)
		require.ErrorIs(t, err, auth.ErrNotAuthorized)
		require.Equal(t, int64(10), f.stock(t, 1))
	})

	t.Run("AllOrNothingOnDriftedStock", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)
		f.addProduct(t, 2, 20)

		batchID, err := f.svc.Create(ctx, "carol", items([2]int64{1, 5}, [2]int64{2, 7}))
		require.NoError(t, err)

		// Stock for the second item drains between validation and commit.
		f.setStock(t, 2, 3)

		err = f.svc.Finalize(ctx, "carol", batchID)
		require.ErrorIs(t, err, domproduct.ErrInsufficientStock)

		// The failing later item must leave earlier items' stock unchanged.
		require.Equal(t, int64(10), f.stock(t, 1))
		require.Equal(t, int64(3), f.stock(t, 2))

		b, err := f.svc.Get(ctx, batchID)
		require.NoError(t, err)
		require.False(t, b.Finalized)
	})

	t.Run("RepeatedProductCannotOverdraw", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)

		// Each item passes validation alone, but together they exceed stock.
		batchID, err := f.svc.Create(ctx, "carol", items([2]int64{1, 6}, [2]int64{1, 6}))
		require.NoError(t, err)

		err = f.svc.Finalize(ctx, "carol", batchID)
		require.ErrorIs(t, err, domproduct.ErrInsufficientStock)
		require.Equal(t, int64(10), f.stock(t, 1))
	})

	t.Run("RepeatedProductWithinStockSettles", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, 10)

		batchID, err := f.svc.Create(ctx, "carol", items([2]int64{1, 6}, [2]int64{1, 4}))
		require.NoError(t, err)

		require.NoError(t, f.svc.Finalize(ctx, "carol", batchID))
		require.Equal(t, int64(0), f.stock(t, 1))
	})

	t.Run("FullCapacityBatch", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, 1, int64(domain.MaxItems))

		full := make([]domain.LineItem, domain.MaxItems)
		for i := range full {
			full[i] = domain.LineItem{ProductID: 1, Quantity: 1}
		}
		batchID, err := f.svc.Create(ctx, "carol", full)
		require.NoError(t, err)

		require.NoError(t, f.svc.Finalize(ctx, "carol", batchID))
		require.Equal(t, int64(0), f.stock(t, 1))
	})
}
