package unitofwork

import (
	"context"

	"healthix-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PatientRepository() contract.PatientRepository
	VectorRecordRepository() contract.VectorRecordRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
