package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
)

func TestDeposit(t *testing.T) {
	service, _ := newTestService(t)
	_, identity := signupTestAccount(t, service, "Ada", "ada@example.com")

	result, err := service.Deposit(context.Background(), identity, decimal.NewFromInt(1000))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Successfully added ₦1,000", result.Message)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(6000)))
	require.NotNil(t, result.Transaction)
	assert.Equal(t, domain.TransactionCredit, result.Transaction.Type)
	assert.Nil(t, result.Transaction.FromAccount)
	require.NotNil(t, result.Transaction.ToAccount)
	assert.Equal(t, identity.AccountNumber, *result.Transaction.ToAccount)
	assert.Equal(t, "Added ₦1,000", result.Transaction.Description)
}

func TestDepositRequiresIdentity(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.Deposit(context.Background(), nil, decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	service, _ := newTestService(t)
	_, identity := signupTestAccount(t, service, "Ada", "ada@example.com")

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
		_, err := service.Deposit(context.Background(), identity, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestTransferHappyPath(t *testing.T) {
	service, _ := newTestService(t)
	sender, senderIdentity := signupTestAccount(t, service, "Ada", "ada@example.com")
	receiver, receiverIdentity := signupTestAccount(t, service, "Bayo", "bayo@example.com")

	outcome, err := service.Transfer(context.Background(), senderIdentity, receiver.AccountNumber, decimal.NewFromInt(2000), "rent")
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, "Transfer completed successfully", outcome.Message)
	require.NotNil(t, outcome.SenderBalance)
	require.NotNil(t, outcome.ReceiverBalance)
	assert.True(t, outcome.SenderBalance.Equal(decimal.NewFromInt(3000)))
	assert.True(t, outcome.ReceiverBalance.Equal(decimal.NewFromInt(7000)))
	require.NotNil(t, outcome.Transaction)
	assert.Equal(t, domain.TransactionDebit, outcome.Transaction.Type)
	assert.Equal(t, "rent", outcome.Transaction.Description)

	// Each party sees exactly their own leg.
	senderHistory, err := service.VisibleTransactions(context.Background(), senderIdentity)
	require.NoError(t, err)
	require.Len(t, senderHistory, 1)
	assert.Equal(t, domain.TransactionDebit, senderHistory[0].Type)
	assert.Equal(t, "rent", senderHistory[0].Description)

	receiverHistory, err := service.VisibleTransactions(context.Background(), receiverIdentity)
	require.NoError(t, err)
	require.Len(t, receiverHistory, 1)
	assert.Equal(t, domain.TransactionCredit, receiverHistory[0].Type)
	assert.Equal(t, "rent", receiverHistory[0].Description)

	// The legs stay paired through the shared source/destination and amount.
	require.NotNil(t, receiverHistory[0].FromAccount)
	assert.Equal(t, sender.AccountNumber, *receiverHistory[0].FromAccount)
	assert.True(t, senderHistory[0].Amount.Equal(receiverHistory[0].Amount))
}

func TestTransferDefaultDescriptions(t *testing.T) {
	service, _ := newTestService(t)
	_, senderIdentity := signupTestAccount(t, service, "Ada", "ada@example.com")
	receiver, receiverIdentity := signupTestAccount(t, service, "Bayo", "bayo@example.com")

	outcome, err := service.Transfer(context.Background(), senderIdentity, receiver.AccountNumber, decimal.NewFromInt(100), "")
	require.NoError(t, err)
	require.True(t, outcome.Success)
	assert.Equal(t, "Transfer to Bayo", outcome.Transaction.Description)

	receiverHistory, err := service.VisibleTransactions(context.Background(), receiverIdentity)
	require.NoError(t, err)
	require.Len(t, receiverHistory, 1)
	assert.Equal(t, "Transfer from Ada", receiverHistory[0].Description)
}

func TestTransferRequiresIdentity(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.Transfer(context.Background(), nil, "BSA-0000000000", decimal.NewFromInt(10), "")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestTransferSoftRejections(t *testing.T) {
	service, _ := newTestService(t)
	sender, senderIdentity := signupTestAccount(t, service, "Ada", "ada@example.com")
	receiver, _ := signupTestAccount(t, service, "Bayo", "bayo@example.com")

	tests := []struct {
		name        string
		destination string
		amount      decimal.Decimal
		wantMessage string
	}{
		{
			name:        "non-positive amount",
			destination: receiver.AccountNumber,
			amount:      decimal.Zero,
			wantMessage: "Amount must be greater than 0",
		},
		{
			name:        "foreign bank prefix",
			destination: "GTB-4830175926",
			amount:      decimal.NewFromInt(10),
			wantMessage: "Transfers are only allowed between accounts in the same bank (BSA)",
		},
		{
			name:        "unknown receiver",
			destination: "BSA-0000000000",
			amount:      decimal.NewFromInt(10),
			wantMessage: "Receiver account not found",
		},
		{
			name:        "self transfer",
			destination: sender.AccountNumber,
			amount:      decimal.NewFromInt(10),
			wantMessage: "Cannot transfer money to the same account",
		},
		{
			name:        "insufficient balance",
			destination: receiver.AccountNumber,
			amount:      decimal.NewFromInt(5001),
			wantMessage: "Insufficient balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := service.Transfer(context.Background(), senderIdentity, tt.destination, tt.amount, "")
			require.NoError(t, err)
			assert.False(t, outcome.Success)
			assert.Equal(t, tt.wantMessage, outcome.Message)
			assert.Nil(t, outcome.SenderBalance)
			assert.Nil(t, outcome.ReceiverBalance)
		})
	}

	// No rejected attempt may have moved money or written ledger records.
	profile, err := service.OwnProfile(context.Background(), senderIdentity)
	require.NoError(t, err)
	assert.True(t, profile.Balance.Equal(decimal.NewFromInt(5000)))
	history, err := service.VisibleTransactions(context.Background(), senderIdentity)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTransferExactBalanceBoundary(t *testing.T) {
	service, _ := newTestService(t)
	_, senderIdentity := signupTestAccount(t, service, "Ada", "ada@example.com")
	receiver, _ := signupTestAccount(t, service, "Bayo", "bayo@example.com")

	// balance + 0.01 is rejected.
	over := decimal.NewFromInt(5000).Add(decimal.RequireFromString("0.01"))
	outcome, err := service.Transfer(context.Background(), senderIdentity, receiver.AccountNumber, over, "")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "Insufficient balance", outcome.Message)

	// The exact balance goes through and empties the account.
	outcome, err = service.Transfer(context.Background(), senderIdentity, receiver.AccountNumber, decimal.NewFromInt(5000), "")
	require.NoError(t, err)
	require.True(t, outcome.Success)
	assert.True(t, outcome.SenderBalance.Equal(decimal.Zero))
	assert.True(t, outcome.ReceiverBalance.Equal(decimal.NewFromInt(10000)))
}

func TestTransferStorageFaultSurfacesAsRejection(t *testing.T) {
	service, repo := newTestService(t)
	_, senderIdentity := signupTestAccount(t, service, "Ada", "ada@example.com")
	receiver, _ := signupTestAccount(t, service, "Bayo", "bayo@example.com")

	repo.FailNextTransfer(errors.New("storage fault"))

	outcome, err := service.Transfer(context.Background(), senderIdentity, receiver.AccountNumber, decimal.NewFromInt(2000), "")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "storage fault", outcome.Message)

	// The unit rolled back.
	profile, err := service.OwnProfile(context.Background(), senderIdentity)
	require.NoError(t, err)
	assert.True(t, profile.Balance.Equal(decimal.NewFromInt(5000)))
	history, err := service.VisibleTransactions(context.Background(), senderIdentity)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTransferAppendsBeneficiaryOnce(t *testing.T) {
	service, _ := newTestService(t)
	_, senderIdentity := signupTestAccount(t, service, "Ada", "ada@example.com")
	receiver, _ := signupTestAccount(t, service, "Bayo", "bayo@example.com")

	for i := 0; i < 2; i++ {
		outcome, err := service.Transfer(context.Background(), senderIdentity, receiver.AccountNumber, decimal.NewFromInt(100), "")
		require.NoError(t, err)
		require.True(t, outcome.Success)
	}

	profile, err := service.OwnProfile(context.Background(), senderIdentity)
	require.NoError(t, err)
	assert.Equal(t, []string{receiver.AccountNumber}, profile.Beneficiaries)
}

func TestReportTransaction(t *testing.T) {
	service, _ := newTestService(t)
	_, senderIdentity := signupTestAccount(t, service, "Ada", "ada@example.com")
	receiver, receiverIdentity := signupTestAccount(t, service, "Bayo", "bayo@example.com")
	_, outsiderIdentity := signupTestAccount(t, service, "Chu", "chu@example.com")

	outcome, err := service.Transfer(context.Background(), senderIdentity, receiver.AccountNumber, decimal.NewFromInt(500), "")
	require.NoError(t, err)
	require.True(t, outcome.Success)
	debitID := outcome.Transaction.ID

	// A non-participant may not report.
	_, err = service.ReportTransaction(context.Background(), outsiderIdentity, debitID, "looks odd")
	assert.ErrorIs(t, err, ErrNotParticipant)

	// The receiver is a participant of the debit leg too.
	ok, err := service.ReportTransaction(context.Background(), receiverIdentity, debitID, "fraud")
	require.NoError(t, err)
	assert.True(t, ok)

	// Reporting is idempotent and keeps the first reason.
	ok, err = service.ReportTransaction(context.Background(), senderIdentity, debitID, "another reason")
	require.NoError(t, err)
	assert.True(t, ok)

	history, err := service.VisibleTransactions(context.Background(), senderIdentity)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Reported)
	require.NotNil(t, history[0].ReportReason)
	assert.Equal(t, "fraud", *history[0].ReportReason)
}

func TestReportTransactionUnknownID(t *testing.T) {
	service, _ := newTestService(t)
	_, identity := signupTestAccount(t, service, "Ada", "ada@example.com")

	_, err := service.ReportTransaction(context.Background(), identity, uuid.New(), "x")
	assert.Error(t, err)
}

func TestReportTransactionRequiresIdentity(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.ReportTransaction(context.Background(), nil, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestFormatNaira(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "0", want: "₦0"},
		{input: "999", want: "₦999"},
		{input: "1000", want: "₦1,000"},
		{input: "2000", want: "₦2,000"},
		{input: "1234567", want: "₦1,234,567"},
		{input: "1250.5", want: "₦1,250.5"},
		{input: "0.25", want: "₦0.25"},
		{input: "-4200", want: "-₦4,200"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := formatNaira(decimal.RequireFromString(tt.input))
			if got != tt.want {
				t.Fatalf("formatNaira(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
