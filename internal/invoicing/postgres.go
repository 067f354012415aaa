package invoicing

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) Get(ctx context.Context, invoiceID int) (*models.Invoice, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, amount::text, status,
			customer_name, customer_email, customer_phone,
			created_at, updated_at
		FROM invoices WHERE id=$1
	`, invoiceID)

	var inv models.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.Amount,
		&inv.Status,
		&inv.Customer.Name,
		&inv.Customer.Email,
		&inv.Customer.Phone,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Store) AddPayment(ctx context.Context, txn *models.Transaction) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoice_transactions (invoice_id, transaction_id, amount, fee, gateway)
		VALUES ($1, $2, $3, $4, $5)
	`, txn.InvoiceID, txn.TransactionID, txn.Amount, txn.Fee, txn.Gateway)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTransaction
		}
		return err
	}

	res, err := tx.Exec(ctx, `
		UPDATE invoices SET status='paid', updated_at=now() WHERE id=$1
	`, txn.InvoiceID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}

	return tx.Commit(ctx)
}

// Log writes audit entries to the gateway_log table, mirroring the raw
// processor payloads so failed flows can be diagnosed after the fact.
type Log struct {
	Pool *pgxpool.Pool
}

func NewLog(pool *pgxpool.Pool) *Log {
	return &Log{Pool: pool}
}

func (l *Log) Record(ctx context.Context, gateway string, payload any, outcome string) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{}`)
	}
	if _, err := l.Pool.Exec(ctx, `
		INSERT INTO gateway_log (gateway, payload, outcome) VALUES ($1, $2, $3)
	`, gateway, data, outcome); err != nil {
		log.Printf("gateway log write failed (%s/%s): %v", gateway, outcome, err)
	}
}
