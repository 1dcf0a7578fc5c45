package repository

// UnitOfWork agrupa los repositorios atados a una misma transacción.
type UnitOfWork struct {
	Balances   BalanceRepository
	Movements  MovementRepository
	Products   ProductRepository
	Warehouses WarehouseRepository
	ExitOrders ExitOrderRepository
}
