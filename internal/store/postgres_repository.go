/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL needed to work with the `accounts` and
 * `transactions` tables, including the atomic transfer unit.
 *
 * Concurrency notes:
 * - DepositFunds and TransferFunds lock the affected account rows with
 *   `SELECT ... FOR UPDATE` so that a balance read-then-write is serialized
 *   against other writers of the same account.
 * - TransferFunds locks the two rows in account-number order so that two
 *   opposite transfers between the same pair cannot deadlock.
 * - Every mutation runs inside one database transaction; the deferred rollback
 *   guarantees no partial transfer state is ever visible.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver and connection pool.
 * - github.com/shopspring/decimal: NUMERIC columns scan into decimals.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresRepository is a concrete implementation of the Repository interface
// for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, account_number, balance, beneficiaries,
       age, gender, occupation, income_range, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash,
		&account.AccountNumber, &account.Balance, &account.Beneficiaries,
		&account.Age, &account.Gender, &account.Occupation, &account.IncomeRange,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount inserts a new account row. Unique violations are mapped to
// the duplicate sentinels so callers can distinguish an email collision (a
// hard signup failure) from an account-number collision (retried with a fresh
// number).
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (
			id, name, email, password_hash, account_number, balance, beneficiaries,
			age, gender, occupation, income_range, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash,
		account.AccountNumber, account.Balance, account.Beneficiaries,
		account.Age, account.Gender, account.Occupation, account.IncomeRange,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if pgErr.ConstraintName == "accounts_account_number_key" {
				return ErrDuplicateAccountNumber
			}
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindAccountByID retrieves an account by its surrogate id.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

// FindAccountByEmail retrieves an account by its case-normalized email.
func (r *PostgresRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1`, accountColumns)
	return scanAccount(r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

// FindAccountByNumber retrieves an account by its account number.
func (r *PostgresRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_number = $1`, accountColumns)
	return scanAccount(r.db.QueryRow(ctx, query, accountNumber))
}

// DepositFunds atomically increments the account balance and appends the
// credit record to the ledger. Returns the new balance.
func (r *PostgresRepository) DepositFunds(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, credit *domain.Transaction) (decimal.Decimal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, err
	}

	newBalance := balance.Add(amount)
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`, newBalance, accountID); err != nil {
		return decimal.Zero, err
	}

	if err := insertTransaction(ctx, tx, credit); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// TransferFunds executes the six sub-operations of a transfer as one atomic
// unit: debit the sender, credit the receiver, append the receiver to the
// sender's beneficiary list if absent, and insert both ledger legs. Any
// failure rolls the whole unit back.
func (r *PostgresRepository) TransferFunds(ctx context.Context, params TransferParams) (*TransferResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sender, receiver, err := lockTransferAccounts(ctx, tx, params.SenderID, params.ReceiverID)
	if err != nil {
		return nil, err
	}

	// The balance was checked before the unit began, but it is re-checked here
	// under the row lock so racing transfers from the same sender cannot
	// overdraw the account.
	if sender.Balance.LessThan(params.Amount) {
		return nil, ErrInsufficientFunds
	}

	senderBalance := sender.Balance.Sub(params.Amount)
	receiverBalance := receiver.Balance.Add(params.Amount)

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`, senderBalance, params.SenderID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`, receiverBalance, params.ReceiverID); err != nil {
		return nil, err
	}

	appendBeneficiary := `
		UPDATE accounts
		SET beneficiaries = array_append(beneficiaries, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(beneficiaries))
	`
	if _, err := tx.Exec(ctx, appendBeneficiary, receiver.AccountNumber, params.SenderID); err != nil {
		return nil, err
	}

	if err := insertTransaction(ctx, tx, params.Debit); err != nil {
		return nil, err
	}
	if err := insertTransaction(ctx, tx, params.Credit); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &TransferResult{SenderBalance: senderBalance, ReceiverBalance: receiverBalance}, nil
}

type lockedAccount struct {
	ID            uuid.UUID
	AccountNumber string
	Balance       decimal.Decimal
}

// lockTransferAccounts locks both account rows in one statement, ordered by
// account number. The fixed acquisition order prevents deadlock between two
// concurrent transfers running in opposite directions over the same pair.
func lockTransferAccounts(ctx context.Context, tx pgx.Tx, senderID, receiverID uuid.UUID) (sender, receiver *lockedAccount, err error) {
	query := `
		SELECT id, account_number, balance
		FROM accounts
		WHERE id = $1 OR id = $2
		ORDER BY account_number
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, senderID, receiverID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var acc lockedAccount
		if err := rows.Scan(&acc.ID, &acc.AccountNumber, &acc.Balance); err != nil {
			return nil, nil, err
		}
		switch acc.ID {
		case senderID:
			sender = &lockedAccount{ID: acc.ID, AccountNumber: acc.AccountNumber, Balance: acc.Balance}
		case receiverID:
			receiver = &lockedAccount{ID: acc.ID, AccountNumber: acc.AccountNumber, Balance: acc.Balance}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if sender == nil || receiver == nil {
		return nil, nil, ErrAccountNotFound
	}
	return sender, receiver, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, record *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, from_account, to_account, amount, type, occurred_at, description,
			reported, report_reason, reported_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.Exec(ctx, query,
		record.ID, record.FromAccount, record.ToAccount, record.Amount,
		string(record.Type), record.Timestamp, record.Description,
		record.Reported, record.ReportReason, record.ReportedAt,
		record.CreatedAt, record.UpdatedAt,
	)
	return err
}

// FindTransactionByID retrieves a single ledger record.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, from_account, to_account, amount, type, occurred_at, description,
		       reported, report_reason, reported_at, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`
	var record domain.Transaction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.FromAccount, &record.ToAccount, &record.Amount,
		&record.Type, &record.Timestamp, &record.Description,
		&record.Reported, &record.ReportReason, &record.ReportedAt,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindVisibleTransactions returns the caller's view of the ledger: debits it
// sent and credits it received, newest first.
func (r *PostgresRepository) FindVisibleTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	query := `
		SELECT id, from_account, to_account, amount, type, occurred_at, description,
		       reported, report_reason, reported_at, created_at, updated_at
		FROM transactions
		WHERE (type = 'debit' AND from_account = $1)
		   OR (type = 'credit' AND to_account = $1)
		ORDER BY occurred_at DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, query, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var record domain.Transaction
		err := rows.Scan(
			&record.ID, &record.FromAccount, &record.ToAccount, &record.Amount,
			&record.Type, &record.Timestamp, &record.Description,
			&record.Reported, &record.ReportReason, &record.ReportedAt,
			&record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, record)
	}
	return transactions, rows.Err()
}

// MarkTransactionReported sets the report fields on a not-yet-reported
// record. The guarded WHERE clause makes repeat reports a no-op: zero rows
// affected with the record present means it was already reported.
func (r *PostgresRepository) MarkTransactionReported(ctx context.Context, id uuid.UUID, reason string, reportedAt time.Time) (bool, error) {
	query := `
		UPDATE transactions
		SET reported = TRUE, report_reason = $2, reported_at = $3, updated_at = NOW()
		WHERE id = $1 AND reported = FALSE
	`
	result, err := r.db.Exec(ctx, query, id, reason, reportedAt)
	if err != nil {
		return false, err
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrTransactionNotFound
	}
	return false, nil
}
