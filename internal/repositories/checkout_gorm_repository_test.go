package repositories_test

import (
	"fmt"
	"testing"

	"cafedelicias/internal/models"
	"cafedelicias/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB opens a fresh in-memory SQLite database for one test. The
// shared cache keeps all pooled connections on the same database; the
// per-test name keeps tests from seeing each other's data.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.User{}, &models.Order{}, &models.OrderLine{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	repo := repositories.NewGORMProductRepository(db)
	require.NoError(t, repo.Create(&p))
	return p
}

func productStock(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	p, err := repositories.NewGORMProductRepository(db).GetByID(id)
	require.NoError(t, err)
	return p.Stock
}

func orderShell(userID string, lines ...models.OrderLine) *models.Order {
	order := &models.Order{ID: uuid.New().String(), UserID: userID}
	for _, line := range lines {
		line.ID = uuid.New().String()
		line.OrderID = order.ID
		order.Lines = append(order.Lines, line)
	}
	return order
}

func TestGORMCheckoutRepository_CommitSuccess(t *testing.T) {
	db := openTestDB(t)
	a := seedProduct(t, db, models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot})
	b := seedProduct(t, db, models.Product{ID: "b", Name: "House Blend", Price: 3000, Stock: 1, Category: models.CategoryBeans})

	repo := repositories.NewGORMCheckoutRepository(db)
	committed, err := repo.Commit(orderShell("user-1",
		models.OrderLine{ProductID: a.ID, Name: a.Name, Quantity: 2, UnitPrice: 1000},
		models.OrderLine{ProductID: b.ID, Name: b.Name, Quantity: 1, UnitPrice: 3000}))
	require.NoError(t, err)

	assert.Equal(t, int64(5000), committed.Total)
	assert.Len(t, committed.Lines, 2)
	assert.Equal(t, 3, productStock(t, db, "a"))
	assert.Equal(t, 0, productStock(t, db, "b"))

	// The committed order is durable, lines included.
	orderRepo := repositories.NewGORMOrderRepository(db)
	stored, err := orderRepo.GetByID(committed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), stored.Total)
	require.Len(t, stored.Lines, 2)
	var sum int64
	for _, line := range stored.Lines {
		sum += line.Subtotal()
	}
	assert.Equal(t, stored.Total, sum)
}

func TestGORMCheckoutRepository_InsufficientStockRollsBackEverything(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot})
	seedProduct(t, db, models.Product{ID: "z", Name: "Brownie", Price: 1500, Stock: 2, Category: models.CategorySweets})

	repo := repositories.NewGORMCheckoutRepository(db)
	// The first line decrements successfully before the second fails; the
	// transaction must roll that decrement back.
	committed, err := repo.Commit(orderShell("user-1",
		models.OrderLine{ProductID: "a", Name: "Espresso", Quantity: 2, UnitPrice: 1000},
		models.OrderLine{ProductID: "z", Name: "Brownie", Quantity: 10, UnitPrice: 1500}))

	assert.Nil(t, committed)
	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "z", insufficient.ProductID)
	assert.Equal(t, "Brownie", insufficient.Name)

	assert.Equal(t, 5, productStock(t, db, "a"), "earlier decrement must be rolled back")
	assert.Equal(t, 2, productStock(t, db, "z"))

	var orderCount, lineCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.OrderLine{}).Count(&lineCount).Error)
	assert.Zero(t, orderCount, "no order row may survive a failed checkout")
	assert.Zero(t, lineCount, "no order line may survive a failed checkout")
}

func TestGORMCheckoutRepository_ContendedProductNeverOversold(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, models.Product{ID: "a", Name: "Cold Brew", Price: 2800, Stock: 5, Category: models.CategoryIced})

	repo := repositories.NewGORMCheckoutRepository(db)

	first, err := repo.Commit(orderShell("user-1",
		models.OrderLine{ProductID: "a", Name: "Cold Brew", Quantity: 3, UnitPrice: 2800}))
	require.NoError(t, err)
	assert.Equal(t, int64(8400), first.Total)

	// The second buyer's conditional decrement sees the post-decrement
	// stock and fails; nothing is oversold.
	second, err := repo.Commit(orderShell("user-2",
		models.OrderLine{ProductID: "a", Name: "Cold Brew", Quantity: 3, UnitPrice: 2800}))
	assert.Nil(t, second)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 2, productStock(t, db, "a"))
}

func TestGORMCheckoutRepository_SkipsVanishedProducts(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot})

	repo := repositories.NewGORMCheckoutRepository(db)
	committed, err := repo.Commit(orderShell("user-1",
		models.OrderLine{ProductID: "a", Name: "Espresso", Quantity: 1, UnitPrice: 1000},
		models.OrderLine{ProductID: "gone", Name: "Discontinued", Quantity: 1, UnitPrice: 9000}))
	require.NoError(t, err)

	require.Len(t, committed.Lines, 1)
	assert.Equal(t, "a", committed.Lines[0].ProductID)
	assert.Equal(t, int64(1000), committed.Total)
}

func TestGORMCheckoutRepository_AllLinesVanished(t *testing.T) {
	db := openTestDB(t)

	repo := repositories.NewGORMCheckoutRepository(db)
	committed, err := repo.Commit(orderShell("user-1",
		models.OrderLine{ProductID: "gone", Name: "Discontinued", Quantity: 1, UnitPrice: 9000}))

	assert.Nil(t, committed)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestGORMOrderRepository_ListAndLatest(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 50, Category: models.CategoryHot})
	seedProduct(t, db, models.Product{ID: "b", Name: "Brownie", Price: 1500, Stock: 50, Category: models.CategorySweets})

	checkoutRepo := repositories.NewGORMCheckoutRepository(db)
	first, err := checkoutRepo.Commit(orderShell("user-1",
		models.OrderLine{ProductID: "a", Name: "Espresso", Quantity: 1, UnitPrice: 1000}))
	require.NoError(t, err)
	second, err := checkoutRepo.Commit(orderShell("user-1",
		models.OrderLine{ProductID: "b", Name: "Brownie", Quantity: 2, UnitPrice: 1500}))
	require.NoError(t, err)

	// SQLite timestamps are coarse; force distinct creation times.
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", first.ID).
		UpdateColumn("created_at", gorm.Expr("datetime('now', '-1 hour')")).Error)

	orderRepo := repositories.NewGORMOrderRepository(db)

	orders, err := orderRepo.ListByUser("user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "most recent order comes first")

	latest, err := orderRepo.GetLatestByUser("user-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	_, err = orderRepo.GetLatestByUser("user-without-orders")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = orderRepo.GetByID("no-such-order")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGORMProductRepository_CategoryQuery(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, models.Product{ID: "1", Name: "Espresso", Price: 1800, Stock: 9, Category: models.CategoryHot})
	seedProduct(t, db, models.Product{ID: "2", Name: "Latte", Price: 2500, Stock: 9, Category: models.CategoryHot})
	seedProduct(t, db, models.Product{ID: "3", Name: "Brownie", Price: 1500, Stock: 9, Category: models.CategorySweets})

	repo := repositories.NewGORMProductRepository(db)

	hot, err := repo.GetByCategory(models.CategoryHot, "1", 5)
	require.NoError(t, err)
	require.Len(t, hot, 1)
	assert.Equal(t, "2", hot[0].ID)

	all, err := repo.GetByCategory(models.CategoryHot, "", 5)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
