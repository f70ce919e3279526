package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/store"
	"github.com/BIGSAMOFAFRICA/BANKAPP/pkg/token"
)

func newTestService(t *testing.T) (*Service, *store.MemoryRepository) {
	t.Helper()
	repo := store.NewMemoryRepository()
	tokens := token.NewIssuer("test-secret", time.Hour)
	service := NewService(repo, tokens, nil, "BSA", decimal.NewFromInt(5000))
	return service, repo
}

func signupTestAccount(t *testing.T, service *Service, name, email string) (*domain.Account, *domain.Identity) {
	t.Helper()
	result, err := service.Signup(context.Background(), SignupParams{
		Name:     name,
		Email:    email,
		Password: "hunter22",
	})
	require.NoError(t, err)
	return result.Account, &domain.Identity{
		AccountID:     result.Account.ID,
		AccountNumber: result.Account.AccountNumber,
	}
}

func TestSignupOpensAccountWithOpeningBalance(t *testing.T) {
	service, _ := newTestService(t)

	result, err := service.Signup(context.Background(), SignupParams{
		Name:     "Ada Obi",
		Email:    "Ada@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "Account created successfully", result.Message)
	assert.Equal(t, "ada@example.com", result.Account.Email)
	assert.True(t, result.Account.Balance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, domain.ValidAccountNumber(result.Account.AccountNumber, "BSA"))
	assert.Empty(t, result.Account.Beneficiaries)

	// The issued token must resolve back to the new account.
	identity, err := token.NewIssuer("test-secret", time.Hour).Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Account.ID, identity.AccountID)
	assert.Equal(t, result.Account.AccountNumber, identity.AccountNumber)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	service, _ := newTestService(t)
	signupTestAccount(t, service, "Ada", "ada@example.com")

	_, err := service.Signup(context.Background(), SignupParams{
		Name:     "Imposter",
		Email:    "ADA@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestSignupRejectsMissingFields(t *testing.T) {
	service, _ := newTestService(t)

	tests := []SignupParams{
		{Name: "", Email: "a@b.c", Password: "x"},
		{Name: "Ada", Email: "", Password: "x"},
		{Name: "Ada", Email: "a@b.c", Password: ""},
		{Name: "   ", Email: "a@b.c", Password: "x"},
	}
	for _, params := range tests {
		_, err := service.Signup(context.Background(), params)
		assert.ErrorIs(t, err, ErrInvalidSignup)
	}
}

func TestLogin(t *testing.T) {
	service, _ := newTestService(t)
	account, _ := signupTestAccount(t, service, "Ada", "ada@example.com")

	result, err := service.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Login successful", result.Message)
	assert.Equal(t, account.ID, result.Account.ID)
	assert.NotEmpty(t, result.Token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service, _ := newTestService(t)
	signupTestAccount(t, service, "Ada", "ada@example.com")

	// Unknown email and wrong password must be indistinguishable.
	_, err := service.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOwnProfileRequiresIdentity(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.OwnProfile(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestOwnProfileReturnsFullAccount(t *testing.T) {
	service, _ := newTestService(t)
	account, identity := signupTestAccount(t, service, "Ada", "ada@example.com")

	profile, err := service.OwnProfile(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, account.ID, profile.ID)
	assert.True(t, profile.Balance.Equal(decimal.NewFromInt(5000)))
}

func TestVisibleTransactionsRequiresIdentity(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.VisibleTransactions(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestLookupRecipient(t *testing.T) {
	service, _ := newTestService(t)
	account, _ := signupTestAccount(t, service, "Ada", "ada@example.com")

	recipient, err := service.LookupRecipient(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	require.NotNil(t, recipient)
	assert.Equal(t, account.Name, recipient.Name)
	assert.Equal(t, account.AccountNumber, recipient.AccountNumber)

	missing, err := service.LookupRecipient(context.Background(), "BSA-0000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
