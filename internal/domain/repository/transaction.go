package repository

import "context"

// RepositoryFactory hands out repository instances that are all bound to the
// same transaction.
type RepositoryFactory interface {
	UserRepo() UserRepository
	DocumentRepo() DocumentRepository
	ExtractionRepo() ExtractionRepository
	TemplateRepo() TemplateRepository
}

// TransactionManager runs a unit of work atomically. The callback receives a
// factory whose repositories share one transaction; returning an error rolls
// everything back.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}
