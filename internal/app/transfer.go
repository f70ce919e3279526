/**
 * @description
 * This file holds the transfer engine: the three operations that touch
 * balances and the ledger. Deposit and Transfer are the only paths that
 * change a balance, and each delegates its writes to a single atomic store
 * unit: either everything commits or nothing does.
 *
 * Transfer's pre-conditions come back as soft failures (success=false plus a
 * message) rather than errors, so the presentation layer can render a
 * friendly rejection without special-casing transport failures. A storage
 * failure inside the atomic unit rolls back and surfaces the same way,
 * carrying the underlying message.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/store"
)

// DepositResult is returned by a successful deposit.
type DepositResult struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Transaction *domain.Transaction `json:"transaction"`
	NewBalance  decimal.Decimal     `json:"new_balance"`
}

// TransferOutcome is the success-shaped result of a transfer. Business-rule
// rejections set Success=false and leave the balance fields nil.
type TransferOutcome struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	Transaction     *domain.Transaction `json:"transaction,omitempty"`
	SenderBalance   *decimal.Decimal    `json:"sender_balance,omitempty"`
	ReceiverBalance *decimal.Decimal    `json:"receiver_balance,omitempty"`
}

func rejectTransfer(message string) *TransferOutcome {
	return &TransferOutcome{Success: false, Message: message}
}

// Deposit adds funds to the caller's own account. Unlike transfer rejections,
// a bad amount here is a hard failure: the deposit form has no business
// outcome to render, only validation.
func (s *Service) Deposit(ctx context.Context, identity *domain.Identity, amount decimal.Decimal) (*DepositResult, error) {
	if identity == nil {
		return nil, ErrAuthenticationRequired
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	credit, err := domain.NewDepositTransaction(identity.AccountNumber, amount, fmt.Sprintf("Added %s", formatNaira(amount)))
	if err != nil {
		return nil, err
	}

	newBalance, err := s.repo.DepositFunds(ctx, identity.AccountID, amount, credit)
	if err != nil {
		return nil, fmt.Errorf("deposit failed: %w", err)
	}

	s.publishEvent("deposit.completed", credit)
	log.Printf("level=info component=app op=deposit outcome=success account_number=%s amount=%s", identity.AccountNumber, amount)

	return &DepositResult{
		Success:     true,
		Message:     fmt.Sprintf("Successfully added %s", formatNaira(amount)),
		Transaction: credit,
		NewBalance:  newBalance,
	}, nil
}

// Transfer moves funds from the caller to another account in the same bank.
// Pre-conditions are evaluated in a fixed order and each failure is returned
// as a soft result; only once every check passes does the atomic unit run.
func (s *Service) Transfer(ctx context.Context, identity *domain.Identity, destinationAccountNumber string, amount decimal.Decimal, description string) (*TransferOutcome, error) {
	if identity == nil {
		return nil, ErrAuthenticationRequired
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return rejectTransfer("Amount must be greater than 0"), nil
	}
	if !domain.HasBankCodePrefix(destinationAccountNumber, s.bankCode) {
		return rejectTransfer(fmt.Sprintf("Transfers are only allowed between accounts in the same bank (%s)", s.bankCode)), nil
	}

	sender, err := s.repo.FindAccountByID(ctx, identity.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return rejectTransfer("Sender account not found"), nil
		}
		return nil, err
	}
	receiver, err := s.repo.FindAccountByNumber(ctx, destinationAccountNumber)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return rejectTransfer("Receiver account not found"), nil
		}
		return nil, err
	}
	if sender.AccountNumber == receiver.AccountNumber {
		return rejectTransfer("Cannot transfer money to the same account"), nil
	}
	if sender.Balance.LessThan(amount) {
		return rejectTransfer("Insufficient balance"), nil
	}

	debitDescription := description
	creditDescription := description
	if description == "" {
		debitDescription = fmt.Sprintf("Transfer to %s", receiver.Name)
		creditDescription = fmt.Sprintf("Transfer from %s", sender.Name)
	}

	debit, credit, err := domain.NewTransferPair(sender.AccountNumber, receiver.AccountNumber, amount, debitDescription, creditDescription)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.TransferFunds(ctx, store.TransferParams{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Amount:     amount,
		Debit:      debit,
		Credit:     credit,
	})
	if err != nil {
		// The unit rolled back; the business outcome is a rejection carrying
		// the underlying message, not a transport error.
		log.Printf("level=warn component=app op=transfer outcome=aborted from=%s to=%s err=%v", sender.AccountNumber, receiver.AccountNumber, err)
		return rejectTransfer(err.Error()), nil
	}

	s.publishEvent("transfer.completed", debit)
	log.Printf("level=info component=app op=transfer outcome=success from=%s to=%s amount=%s", sender.AccountNumber, receiver.AccountNumber, amount)

	senderBalance := result.SenderBalance
	receiverBalance := result.ReceiverBalance
	return &TransferOutcome{
		Success:         true,
		Message:         "Transfer completed successfully",
		Transaction:     debit,
		SenderBalance:   &senderBalance,
		ReceiverBalance: &receiverBalance,
	}, nil
}

// ReportTransaction flags a ledger record the caller participated in.
// Reporting is idempotent: a second report returns success without touching
// the fields set by the first.
func (s *Service) ReportTransaction(ctx context.Context, identity *domain.Identity, transactionID uuid.UUID, reason string) (bool, error) {
	if identity == nil {
		return false, ErrAuthenticationRequired
	}

	record, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return false, err
	}
	if !record.InvolvesAccount(identity.AccountNumber) {
		return false, ErrNotParticipant
	}
	if record.Reported {
		return true, nil
	}

	_, err = s.repo.MarkTransactionReported(ctx, transactionID, domain.SanitizeReportReason(reason), time.Now().UTC())
	if err != nil {
		return false, err
	}
	return true, nil
}
