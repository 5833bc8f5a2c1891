package repository

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Stock     StockRepository
	Movements StockMovementRepository
	Requests  TransferRequestRepository
	Transfers TransferRepository
	Products  ProductRepository
	Branches  BranchRepository
}
