// Package mocks provides mock implementations for testing the patrol scheduler.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core port interfaces. The generated files are committed so the module
// builds without a generate step; rerun go generate after interface changes.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockStore := mocks.NewMockTaskStore(ctrl)
//	mockStore.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mocks for the priority queue store ports from internal/core.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=pq_store_mock.go github.com/strixlab/patrol/internal/core PriorityQueueStore,PriorityQueueStoreTx

// Generate mocks for the task store ports from internal/core.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=task_store_mock.go github.com/strixlab/patrol/internal/core TaskStore,TaskStoreTx

// Generate mocks for the upstream connector ports from internal/core.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=connectors_mock.go github.com/strixlab/patrol/internal/core CatalogueService,InventoryService,BlobStoreService

// Generate mocks for the message broker ports from internal/core.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=broker_mock.go github.com/strixlab/patrol/internal/core Broker,Delivery

// Generate mock for the SchedulerControl interface consumed by the HTTP API.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=scheduler_control_mock.go github.com/strixlab/patrol/internal/core SchedulerControl

// Generate mock for the CacheRepository interface from internal/core.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/strixlab/patrol/internal/core CacheRepository

// Generate mock for the transaction runner pairing queue and audit writes.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=tx_runner_mock.go github.com/strixlab/patrol/internal/core TxRunner
