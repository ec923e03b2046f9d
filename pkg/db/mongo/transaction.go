package mongo

import (
	"context"
	"fmt"

	apperrors "barbershop/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type TransactionFunc func(ctx mongo.SessionContext) error

// Transactor runs a unit of work atomically against one client.
type Transactor interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type sessionTransactor struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

// NewTransactor uses snapshot reads and majority writes. A read-then-write unit
// such as an ownership check followed by a delete sees one consistent view, and
// the write aborts if the document changed after that read.
func NewTransactor(client *mongo.Client) Transactor {
	return &sessionTransactor{
		client: client,
		opts: options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()),
	}
}

// ExecuteTransaction commits when fn returns nil. The driver retries
// TransientTransactionError labels on its own; AppErrors from fn come back as is.
func (t *sessionTransactor) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	}, t.opts)
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	default:
		return fmt.Errorf("transaction aborted: %w", err)
	}
}
