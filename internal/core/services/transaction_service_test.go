package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portssvc "github.com/pennywise-app/pennywise_backend/internal/core/ports/services"
	"github.com/pennywise-app/pennywise_backend/internal/core/services"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo   *MockTransactionRepository
	mockAccRepo   *MockAccountRepository
	mockAuditRepo *MockAuditRepository
	service       portssvc.TransactionSvcFacade
	ledgerID      string
	userID        string

	checking  domain.Account
	card      domain.Account
	salary    domain.Account
	food      domain.Account
	groceries domain.Account
	dining    domain.Account
	chart     []domain.Account
}

// resetMocks swaps in fresh mocks without regenerating the fixture accounts.
func (suite *TransactionServiceTestSuite) resetMocks() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccRepo = new(MockAccountRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockAccRepo, suite.mockAuditRepo, decimal.NewFromInt(1_000_000))
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.resetMocks()
	suite.ledgerID = uuid.NewString()
	suite.userID = uuid.NewString()

	mk := func(name string, accType domain.AccountType, parentID string, depth int) domain.Account {
		return domain.Account{
			AccountID:       uuid.NewString(),
			LedgerID:        suite.ledgerID,
			Name:            name,
			AccountType:     accType,
			ParentAccountID: parentID,
			Depth:           depth,
		}
	}
	suite.checking = mk("Checking", domain.Asset, "", 1)
	suite.card = mk("CreditCard", domain.Liability, "", 1)
	suite.salary = mk("Salary", domain.Income, "", 1)
	suite.food = mk("Food", domain.Expense, "", 1)
	suite.groceries = mk("Groceries", domain.Expense, suite.food.AccountID, 2)
	suite.dining = mk("Dining", domain.Expense, suite.food.AccountID, 2)
	suite.chart = []domain.Account{suite.checking, suite.card, suite.salary, suite.food, suite.groceries, suite.dining}
}

func (suite *TransactionServiceTestSuite) expectChart() {
	suite.mockAccRepo.On("FindAccountsByLedger", mock.Anything, suite.ledgerID).Return(suite.chart, nil)
}

func (suite *TransactionServiceTestSuite) expectTx() {
	suite.mockTxnRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockTxnRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
}

func (suite *TransactionServiceTestSuite) request(fromID, toID string, amount string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description:   "Weekly shop",
		Amount:        decimal.RequireFromString(amount),
		FromAccountID: fromID,
		ToAccountID:   toID,
	}
}

// --- CreateTransaction ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_InfersExpenseType() {
	ctx := context.Background()
	suite.expectChart()
	suite.expectTx()

	var saved domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(2).(domain.Transaction) }).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	created, err := suite.service.CreateTransaction(ctx, suite.ledgerID, suite.request(suite.checking.AccountID, suite.groceries.AccountID, "45.50"), suite.userID)

	suite.Require().NoError(err)
	suite.NotEmpty(created.TransactionID)
	suite.Equal(domain.TransactionExpense, saved.TransactionType)
	suite.Equal(suite.userID, saved.CreatedBy)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_EndpointLegality() {
	cases := []struct {
		name     string
		from, to string
		explicit domain.TransactionType
		wantType domain.TransactionType
		wantErr  error
	}{
		{name: "asset to expense", from: suite.checking.AccountID, to: suite.groceries.AccountID, wantType: domain.TransactionExpense},
		{name: "liability to expense", from: suite.card.AccountID, to: suite.groceries.AccountID, wantType: domain.TransactionExpense},
		{name: "income to asset", from: suite.salary.AccountID, to: suite.checking.AccountID, wantType: domain.TransactionIncome},
		{name: "income to liability is a payment", from: suite.salary.AccountID, to: suite.card.AccountID, wantType: domain.TransactionIncome},
		{name: "asset to liability transfer", from: suite.checking.AccountID, to: suite.card.AccountID, wantType: domain.TransactionTransfer},
		{name: "expense cannot fund anything", from: suite.groceries.AccountID, to: suite.checking.AccountID, wantErr: apperrors.ErrAccountTypeIllegal},
		{name: "income cannot pay expense directly", from: suite.salary.AccountID, to: suite.groceries.AccountID, wantErr: apperrors.ErrAccountTypeIllegal},
		{name: "explicit type must agree with endpoints", from: suite.checking.AccountID, to: suite.groceries.AccountID, explicit: domain.TransactionTransfer, wantErr: apperrors.ErrAccountTypeIllegal},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.resetMocks()
			ctx := context.Background()
			suite.expectChart()

			req := suite.request(tc.from, tc.to, "10.00")
			req.TransactionType = tc.explicit

			if tc.wantErr == nil {
				suite.expectTx()
				var saved domain.Transaction
				suite.mockTxnRepo.On("SaveTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).
					Run(func(args mock.Arguments) { saved = args.Get(2).(domain.Transaction) }).Return(nil).Once()
				suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

				_, err := suite.service.CreateTransaction(ctx, suite.ledgerID, req, suite.userID)
				suite.Require().NoError(err)
				suite.Equal(tc.wantType, saved.TransactionType)
			} else {
				_, err := suite.service.CreateTransaction(ctx, suite.ledgerID, req, suite.userID)
				suite.Require().ErrorIs(err, tc.wantErr)
				suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_SameAccount() {
	ctx := context.Background()
	suite.expectChart()

	_, err := suite.service.CreateTransaction(ctx, suite.ledgerID, suite.request(suite.checking.AccountID, suite.checking.AccountID, "10.00"), suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrSameAccount)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_NonLeafEndpoint() {
	ctx := context.Background()
	suite.expectChart()

	_, err := suite.service.CreateTransaction(ctx, suite.ledgerID, suite.request(suite.checking.AccountID, suite.food.AccountID, "10.00"), suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrLeafRequired)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_AmountRules() {
	ctx := context.Background()
	cases := []struct {
		name   string
		amount string
	}{
		{name: "zero", amount: "0"},
		{name: "negative", amount: "-5.00"},
		{name: "three fractional digits", amount: "1.999"},
		{name: "above ceiling", amount: "1000001"},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.service.CreateTransaction(ctx, suite.ledgerID, suite.request(suite.checking.AccountID, suite.groceries.AccountID, tc.amount), suite.userID)
			suite.Require().ErrorIs(err, apperrors.ErrValidation)
		})
	}
	// Amount rules fail before the chart is ever read.
	suite.mockAccRepo.AssertNotCalled(suite.T(), "FindAccountsByLedger", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_BlankDescription() {
	ctx := context.Background()
	req := suite.request(suite.checking.AccountID, suite.groceries.AccountID, "10.00")
	req.Description = "   "

	_, err := suite.service.CreateTransaction(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

// --- UpdateTransaction ---

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_FullReplacePreservesCreation() {
	ctx := context.Background()
	createdAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	creator := uuid.NewString()
	existing := domain.Transaction{
		TransactionID:   uuid.NewString(),
		LedgerID:        suite.ledgerID,
		Date:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Description:     "Old description",
		Amount:          decimal.RequireFromString("20.00"),
		FromAccountID:   suite.checking.AccountID,
		ToAccountID:     suite.groceries.AccountID,
		TransactionType: domain.TransactionExpense,
		AuditFields:     domain.AuditFields{CreatedAt: createdAt, CreatedBy: creator},
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.ledgerID, existing.TransactionID).Return(&existing, nil).Once()
	suite.expectChart()
	suite.expectTx()

	var updated domain.Transaction
	suite.mockTxnRepo.On("UpdateTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) { updated = args.Get(2).(domain.Transaction) }).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	req := dto.UpdateTransactionRequest{
		Date:          time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Description:   "Salary for February",
		Amount:        decimal.RequireFromString("5200.00"),
		FromAccountID: suite.salary.AccountID,
		ToAccountID:   suite.checking.AccountID,
	}
	result, err := suite.service.UpdateTransaction(ctx, suite.ledgerID, existing.TransactionID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(existing.TransactionID, updated.TransactionID)
	suite.Equal(domain.TransactionIncome, updated.TransactionType, "type is re-derived from the new endpoints")
	suite.Equal(createdAt, updated.CreatedAt)
	suite.Equal(creator, updated.CreatedBy)
	suite.Equal(suite.userID, updated.LastUpdatedBy)
	suite.Equal(result.TransactionID, updated.TransactionID)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_NotFound() {
	ctx := context.Background()
	txnID := uuid.NewString()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.ledgerID, txnID).Return(nil, apperrors.ErrNotFound).Once()

	req := dto.UpdateTransactionRequest{
		Date:          time.Now(),
		Description:   "whatever",
		Amount:        decimal.RequireFromString("1.00"),
		FromAccountID: suite.checking.AccountID,
		ToAccountID:   suite.groceries.AccountID,
	}
	_, err := suite.service.UpdateTransaction(ctx, suite.ledgerID, txnID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

// --- DeleteTransaction ---

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_Success() {
	ctx := context.Background()
	existing := domain.Transaction{TransactionID: uuid.NewString(), LedgerID: suite.ledgerID}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.ledgerID, existing.TransactionID).Return(&existing, nil).Once()
	suite.expectTx()
	suite.mockTxnRepo.On("DeleteTransactionInTx", ctx, mock.Anything, existing.TransactionID).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.ledgerID, existing.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- ListTransactions ---

func (suite *TransactionServiceTestSuite) TestListTransactions_DefaultAndCappedLimit() {
	ctx := context.Background()
	suite.mockTxnRepo.On("ListTransactionsByLedger", ctx, suite.ledgerID, 20, (*string)(nil)).Return([]domain.Transaction{}, nil, nil).Once()
	_, _, err := suite.service.ListTransactions(ctx, suite.ledgerID, dto.ListTransactionsParams{})
	suite.Require().NoError(err)

	suite.mockTxnRepo.On("ListTransactionsByLedger", ctx, suite.ledgerID, 100, (*string)(nil)).Return([]domain.Transaction{}, nil, nil).Once()
	_, _, err = suite.service.ListTransactions(ctx, suite.ledgerID, dto.ListTransactionsParams{Limit: 5000})
	suite.Require().NoError(err)

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestListTransactions_AccountFilter() {
	ctx := context.Background()
	suite.mockTxnRepo.On("ListTransactionsByAccount", ctx, suite.ledgerID, suite.groceries.AccountID, 20, (*string)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()

	_, _, err := suite.service.ListTransactions(ctx, suite.ledgerID, dto.ListTransactionsParams{AccountID: suite.groceries.AccountID})

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ListTransactionsByLedger", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ReassignTransactions ---

func (suite *TransactionServiceTestSuite) TestReassignTransactions_Success() {
	ctx := context.Background()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, suite.groceries.AccountID).Return(&suite.groceries, nil).Once()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, suite.dining.AccountID).Return(&suite.dining, nil).Once()
	suite.expectChart()
	suite.expectTx()
	suite.mockTxnRepo.On("LockLedgerInTx", ctx, mock.Anything, suite.ledgerID).Return(nil).Once()
	suite.mockTxnRepo.On("ReassignTransactionsInTx", ctx, mock.Anything, suite.ledgerID, suite.groceries.AccountID, suite.dining.AccountID).Return(int64(3), nil).Once()
	suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	moved, err := suite.service.ReassignTransactions(ctx, suite.ledgerID, dto.ReassignTransactionsRequest{
		FromAccountID: suite.groceries.AccountID,
		ToAccountID:   suite.dining.AccountID,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(int64(3), moved)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestReassignTransactions_TypeMismatch() {
	ctx := context.Background()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, suite.groceries.AccountID).Return(&suite.groceries, nil).Once()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, suite.checking.AccountID).Return(&suite.checking, nil).Once()

	_, err := suite.service.ReassignTransactions(ctx, suite.ledgerID, dto.ReassignTransactionsRequest{
		FromAccountID: suite.groceries.AccountID,
		ToAccountID:   suite.checking.AccountID,
	}, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrTypeMismatch)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ReassignTransactionsInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestReassignTransactions_SameAccount() {
	ctx := context.Background()

	_, err := suite.service.ReassignTransactions(ctx, suite.ledgerID, dto.ReassignTransactionsRequest{
		FromAccountID: suite.groceries.AccountID,
		ToAccountID:   suite.groceries.AccountID,
	}, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrSameAccount)
}

func (suite *TransactionServiceTestSuite) TestReassignTransactions_TargetMustBeLeaf() {
	ctx := context.Background()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, suite.groceries.AccountID).Return(&suite.groceries, nil).Once()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, suite.food.AccountID).Return(&suite.food, nil).Once()
	suite.expectChart()

	_, err := suite.service.ReassignTransactions(ctx, suite.ledgerID, dto.ReassignTransactionsRequest{
		FromAccountID: suite.groceries.AccountID,
		ToAccountID:   suite.food.AccountID,
	}, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrLeafRequired)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
