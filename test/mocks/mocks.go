// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/ledger.go -destination=ledger_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/transaction_repository.go -destination=transaction_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/router.go -destination=router_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/tasks.go -destination=tasks_mock.go -package=mocks
