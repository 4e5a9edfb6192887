package services_test

import (
	"context"
	"testing"

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

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccRepo   *MockAccountRepository
	mockTxnRepo   *MockTransactionRepository
	mockAuditRepo *MockAuditRepository
	service       portssvc.AccountSvcFacade
	ledgerID      string
	userID        string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewAccountService(suite.mockAccRepo, suite.mockTxnRepo, suite.mockAuditRepo)
	suite.ledgerID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) expectTx() {
	suite.mockAccRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockAccRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.mockAccRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
}

func (suite *AccountServiceTestSuite) account(name string, accType domain.AccountType, parentID string, depth int) domain.Account {
	return domain.Account{
		AccountID:       uuid.NewString(),
		LedgerID:        suite.ledgerID,
		Name:            name,
		AccountType:     accType,
		ParentAccountID: parentID,
		Depth:           depth,
	}
}

// --- CreateAccount ---

func (suite *AccountServiceTestSuite) TestCreateAccount_RootSuccess() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Name: "Savings", AccountType: domain.Asset}

	suite.mockAccRepo.On("FindAccountByName", ctx, suite.ledgerID, "Savings").Return(nil, apperrors.ErrNotFound).Once()
	suite.expectTx()

	var saved domain.Account
	suite.mockAccRepo.On("SaveAccountInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { saved = args.Get(2).(domain.Account) }).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.AccountID)
	suite.Equal("Savings", saved.Name)
	suite.Equal(domain.Asset, saved.AccountType)
	suite.Equal(1, saved.Depth)
	suite.Empty(saved.ParentAccountID)
	suite.Equal(suite.userID, saved.CreatedBy)
	suite.mockAccRepo.AssertExpectations(suite.T())
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ChildInheritsDepth() {
	ctx := context.Background()
	parent := suite.account("Food", domain.Expense, "", 1)
	req := dto.CreateAccountRequest{Name: "Groceries", AccountType: domain.Expense, ParentAccountID: &parent.AccountID}

	suite.mockAccRepo.On("FindAccountByName", ctx, suite.ledgerID, "Groceries").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, parent.AccountID).Return(&parent, nil).Once()
	suite.expectTx()
	suite.mockAccRepo.On("SaveAccountInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, created.Depth)
	suite.Equal(parent.AccountID, created.ParentAccountID)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateName() {
	ctx := context.Background()
	existing := suite.account("Savings", domain.Asset, "", 1)
	req := dto.CreateAccountRequest{Name: "Savings", AccountType: domain.Asset}

	suite.mockAccRepo.On("FindAccountByName", ctx, suite.ledgerID, "Savings").Return(&existing, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrDuplicateName)
	suite.mockAccRepo.AssertNotCalled(suite.T(), "SaveAccountInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentNotFound() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{Name: "Groceries", AccountType: domain.Expense, ParentAccountID: &parentID}

	suite.mockAccRepo.On("FindAccountByName", ctx, suite.ledgerID, "Groceries").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, parentID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrParentNotFound)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentTypeMismatch() {
	ctx := context.Background()
	parent := suite.account("Food", domain.Expense, "", 1)
	req := dto.CreateAccountRequest{Name: "Checking", AccountType: domain.Asset, ParentAccountID: &parent.AccountID}

	suite.mockAccRepo.On("FindAccountByName", ctx, suite.ledgerID, "Checking").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, parent.AccountID).Return(&parent, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrTypeMismatch)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DepthLimit() {
	ctx := context.Background()
	parent := suite.account("CardY", domain.Liability, uuid.NewString(), domain.MaxAccountDepth)
	req := dto.CreateAccountRequest{Name: "TooDeep", AccountType: domain.Liability, ParentAccountID: &parent.AccountID}

	suite.mockAccRepo.On("FindAccountByName", ctx, suite.ledgerID, "TooDeep").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, parent.AccountID).Return(&parent, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrMaxDepthExceeded)
	suite.mockAccRepo.AssertNotCalled(suite.T(), "SaveAccountInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidType() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Name: "Weird", AccountType: domain.AccountType("GOODWILL")}

	_, err := suite.service.CreateAccount(ctx, suite.ledgerID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

// --- DeleteAccount ---

func (suite *AccountServiceTestSuite) TestDeleteAccount_Success() {
	ctx := context.Background()
	acc := suite.account("Old", domain.Expense, "", 1)

	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, acc.AccountID).Return(&acc, nil).Once()
	suite.expectTx()
	suite.mockAccRepo.On("CountChildrenInTx", ctx, mock.Anything, acc.AccountID).Return(int64(0), nil).Once()
	suite.mockTxnRepo.On("CountByAccountInTx", ctx, mock.Anything, acc.AccountID).Return(int64(0), nil).Once()
	suite.mockAccRepo.On("DeleteAccountInTx", ctx, mock.Anything, acc.AccountID).Return(nil).Once()
	suite.mockAuditRepo.On("SaveAuditRecordInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.ledgerID, acc.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.mockAccRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_SystemAccountRefused() {
	ctx := context.Background()
	cash := suite.account(domain.SystemAccountCash, domain.Asset, "", 1)
	cash.IsSystem = true

	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, cash.AccountID).Return(&cash, nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.ledgerID, cash.AccountID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrSystemAccount)
	suite.mockAccRepo.AssertNotCalled(suite.T(), "DeleteAccountInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_HasChildren() {
	ctx := context.Background()
	acc := suite.account("Food", domain.Expense, "", 1)

	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, acc.AccountID).Return(&acc, nil).Once()
	suite.mockAccRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockAccRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAccRepo.On("CountChildrenInTx", ctx, mock.Anything, acc.AccountID).Return(int64(2), nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.ledgerID, acc.AccountID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrHasChildren)
	suite.mockAccRepo.AssertNotCalled(suite.T(), "DeleteAccountInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_HasTransactions() {
	ctx := context.Background()
	acc := suite.account("Groceries", domain.Expense, "", 1)

	suite.mockAccRepo.On("FindAccountByID", ctx, suite.ledgerID, acc.AccountID).Return(&acc, nil).Once()
	suite.mockAccRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockAccRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAccRepo.On("CountChildrenInTx", ctx, mock.Anything, acc.AccountID).Return(int64(0), nil).Once()
	suite.mockTxnRepo.On("CountByAccountInTx", ctx, mock.Anything, acc.AccountID).Return(int64(5), nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.ledgerID, acc.AccountID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrHasTransactions)
}

// --- Balances ---

func (suite *AccountServiceTestSuite) TestGetAccountBalance_AssetAggregatesSubtree() {
	ctx := context.Background()
	bank := suite.account("Bank", domain.Asset, "", 1)
	checking := suite.account("Checking", domain.Asset, bank.AccountID, 2)
	savings := suite.account("Savings", domain.Asset, bank.AccountID, 2)
	chart := []domain.Account{bank, checking, savings}

	flows := map[string]domain.AccountFlow{
		checking.AccountID: {In: decimal.NewFromInt(100), Out: decimal.NewFromInt(30)},
		savings.AccountID:  {In: decimal.NewFromInt(50)},
	}
	suite.mockAccRepo.On("FindAccountsByLedger", ctx, suite.ledgerID).Return(chart, nil).Once()
	suite.mockTxnRepo.On("SumFlowsByLedger", ctx, suite.ledgerID).Return(flows, nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, suite.ledgerID, bank.AccountID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(120)), "expected 120, got %s", balance)
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance_LiabilityParentIsSumOfChildren() {
	ctx := context.Background()
	cards := suite.account("CreditCards", domain.Liability, "", 1)
	bankX := suite.account("BankX", domain.Liability, cards.AccountID, 2)
	cardY := suite.account("CardY", domain.Liability, bankX.AccountID, 3)
	cardZ := suite.account("CardZ", domain.Liability, bankX.AccountID, 3)
	chart := []domain.Account{cards, bankX, cardY, cardZ}

	// Liability balance is Out - In: spend raises debt, payments reduce it.
	flows := map[string]domain.AccountFlow{
		cardY.AccountID: {In: decimal.NewFromInt(20), Out: decimal.NewFromInt(100)},
		cardZ.AccountID: {Out: decimal.NewFromInt(50)},
	}
	suite.mockAccRepo.On("FindAccountsByLedger", ctx, suite.ledgerID).Return(chart, nil)
	suite.mockTxnRepo.On("SumFlowsByLedger", ctx, suite.ledgerID).Return(flows, nil)

	parent, err := suite.service.GetAccountBalance(ctx, suite.ledgerID, cards.AccountID)
	suite.Require().NoError(err)
	childY, err := suite.service.GetAccountBalance(ctx, suite.ledgerID, cardY.AccountID)
	suite.Require().NoError(err)
	childZ, err := suite.service.GetAccountBalance(ctx, suite.ledgerID, cardZ.AccountID)
	suite.Require().NoError(err)

	suite.True(childY.Equal(decimal.NewFromInt(80)))
	suite.True(childZ.Equal(decimal.NewFromInt(50)))
	suite.True(parent.Equal(childY.Add(childZ)), "parent balance must equal the sum of its leaves")
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance_UnknownAccount() {
	ctx := context.Background()
	suite.mockAccRepo.On("FindAccountsByLedger", ctx, suite.ledgerID).Return([]domain.Account{}, nil).Once()

	_, err := suite.service.GetAccountBalance(ctx, suite.ledgerID, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountTree_SortedWithAggregates() {
	ctx := context.Background()
	food := suite.account("Food", domain.Expense, "", 1)
	restaurants := suite.account("Restaurants", domain.Expense, food.AccountID, 2)
	groceries := suite.account("Groceries", domain.Expense, food.AccountID, 2)
	salary := suite.account("Salary", domain.Income, "", 1)
	chart := []domain.Account{food, restaurants, groceries, salary}

	flows := map[string]domain.AccountFlow{
		groceries.AccountID:   {In: decimal.NewFromInt(200)},
		restaurants.AccountID: {In: decimal.NewFromInt(75)},
		salary.AccountID:      {Out: decimal.NewFromInt(5000)},
	}
	suite.mockAccRepo.On("FindAccountsByLedger", ctx, suite.ledgerID).Return(chart, nil).Once()
	suite.mockTxnRepo.On("SumFlowsByLedger", ctx, suite.ledgerID).Return(flows, nil).Once()

	tree, err := suite.service.GetAccountTree(ctx, suite.ledgerID, nil)

	suite.Require().NoError(err)
	suite.Require().Len(tree, 2)
	suite.Equal("Food", tree[0].Name)
	suite.Equal("Salary", tree[1].Name)
	suite.True(tree[0].Balance.Equal(decimal.NewFromInt(275)), "expense parent aggregates children")
	suite.True(tree[1].Balance.Equal(decimal.NewFromInt(5000)))
	suite.Require().Len(tree[0].Children, 2)
	suite.Equal("Groceries", tree[0].Children[0].Name)
	suite.Equal("Restaurants", tree[0].Children[1].Name)
	suite.True(tree[0].Children[0].Balance.Equal(decimal.NewFromInt(200)))
}

func (suite *AccountServiceTestSuite) TestGetAccountTree_TypeFilter() {
	ctx := context.Background()
	food := suite.account("Food", domain.Expense, "", 1)
	groceries := suite.account("Groceries", domain.Expense, food.AccountID, 2)
	salary := suite.account("Salary", domain.Income, "", 1)
	chart := []domain.Account{food, groceries, salary}

	flows := map[string]domain.AccountFlow{
		groceries.AccountID: {In: decimal.NewFromInt(200)},
		salary.AccountID:    {Out: decimal.NewFromInt(5000)},
	}
	suite.mockAccRepo.On("FindAccountsByLedger", ctx, suite.ledgerID).Return(chart, nil).Once()
	suite.mockTxnRepo.On("SumFlowsByLedger", ctx, suite.ledgerID).Return(flows, nil).Once()

	filter := domain.Expense
	tree, err := suite.service.GetAccountTree(ctx, suite.ledgerID, &filter)

	suite.Require().NoError(err)
	suite.Require().Len(tree, 1, "income root filtered out")
	suite.Equal("Food", tree[0].Name)
	suite.Require().Len(tree[0].Children, 1)
}

func (suite *AccountServiceTestSuite) TestGetAccountTree_InvalidTypeFilter() {
	filter := domain.AccountType("GOODWILL")

	_, err := suite.service.GetAccountTree(context.Background(), suite.ledgerID, &filter)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccRepo.AssertNotCalled(suite.T(), "FindAccountsByLedger")
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
