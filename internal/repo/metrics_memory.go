package repo

import "context"

type InMemoryMetricsRepository struct {
	productRepo  ProductRepository
	movementRepo *InMemoryMovementRepository
	cartRepo     *InMemoryCartRepository
}

func NewInMemoryMetricsRepository(productRepo ProductRepository, movementRepo *InMemoryMovementRepository, cartRepo *InMemoryCartRepository) *InMemoryMetricsRepository {
	return &InMemoryMetricsRepository{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		cartRepo:     cartRepo,
	}
}

// GetDashboardMetrics implements MetricsRepository.
func (i *InMemoryMetricsRepository) GetDashboardMetrics(ctx context.Context) (Metrics, error) {
	m := Metrics{}

	products, err := i.productRepo.GetAll(ctx)
	if err != nil {
		return m, err
	}
	m.TotalProducts = len(products)

	names := make(map[int]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
		if p.LowStock() {
			m.LowStockCount++
		}
		if p.InventoryCount == 0 {
			m.OutOfStockCount++
		}
	}

	counts := map[int]int{}
	for _, mv := range i.movementRepo.all() {
		m.TotalMovements++
		counts[mv.ProductID]++
	}
	for _, p := range products {
		if counts[p.ID] > m.MostMovedProduct.MovementCount {
			m.MostMovedProduct = MostMovedProduct{Name: names[p.ID], MovementCount: counts[p.ID]}
		}
	}

	users := map[string]struct{}{}
	for _, e := range i.cartRepo.all() {
		users[e.UserID] = struct{}{}
		m.UnitsInCarts += e.Quantity
	}
	m.ActiveCarts = len(users)

	return m, nil
}
