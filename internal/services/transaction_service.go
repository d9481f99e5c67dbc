package services

import (
	"context"
	"errors"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// TransactionService handles transaction creation and deletion, keeping
// the roll-up tables consistent and publishing events for the
// reconciliation worker.
type TransactionService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
	logger  *log.Logger
}

func NewTransactionService(storage *storage.SQLiteRepository, events *amqp.Client, logger *log.Logger) *TransactionService {
	return &TransactionService{
		storage: storage,
		events:  events,
		logger:  logger.WithComponent(log.ComponentTransaction),
	}
}

// Create validates the payload, resolves the category reference to one
// owned by the caller, snapshots its name and icon onto the transaction,
// and writes the row plus both roll-up updates atomically.
func (s *TransactionService) Create(ctx context.Context, userID string, in core.TransactionInput) Result {
	if err := in.Validate(); err != nil {
		return failForError(ctx, s.logger, "create_transaction", err, "")
	}

	category, err := s.storage.GetCategoryByName(ctx, userID, in.Category, in.Type)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Fail("category not found")
		}
		return failForError(ctx, s.logger, "create_transaction", err, "")
	}

	transaction, err := s.storage.CreateTransaction(ctx, userID, in, category)
	if err != nil {
		return failForError(ctx, s.logger, "create_transaction", err, "")
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldUserID, userID,
		log.FieldTxID, transaction.ID,
		log.FieldTxType, string(transaction.Type),
		log.FieldAmountCents, transaction.AmountCents,
		log.FieldCategory, transaction.CategoryName)

	s.publishEvent(ctx, amqp.ActionCreated, transaction)

	return OK(transaction)
}

// Delete removes a transaction owned by the caller and decrements both
// roll-ups in the same atomic unit.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) Result {
	transaction, err := s.storage.DeleteTransaction(ctx, userID, transactionID)
	if err != nil {
		return failForError(ctx, s.logger, "delete_transaction", err, "transaction not found")
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldUserID, userID,
		log.FieldTxID, transactionID)

	s.publishEvent(ctx, amqp.ActionDeleted, transaction)

	return OK(map[string]string{"id": transactionID})
}

// publishEvent notifies the reconciliation worker. Publish failures only
// log: the write already committed and must not be rolled back for an
// observability side channel.
func (s *TransactionService) publishEvent(ctx context.Context, action string, t core.Transaction) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, t)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldError, err,
			log.FieldTxID, t.ID,
			log.FieldOperation, action)
	}
}
