package movement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

// MockReserveRepository is a mock implementation of ReserveRepository for testing
type MockReserveRepository struct {
	mock.Mock
}

func (m *MockReserveRepository) Create(ctx context.Context, reserve *domain.Reserve) error {
	args := m.Called(ctx, reserve)
	return args.Error(0)
}

func (m *MockReserveRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reserve, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reserve), args.Error(1)
}

func (m *MockReserveRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]*domain.Reserve, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reserve), args.Error(1)
}

func (m *MockReserveRepository) Update(ctx context.Context, reserve *domain.Reserve) error {
	args := m.Called(ctx, reserve)
	return args.Error(0)
}

func (m *MockReserveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of MovementRepository for testing
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *domain.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) Delete(ctx context.Context, reserveID, movementID uuid.UUID) error {
	args := m.Called(ctx, reserveID, movementID)
	return args.Error(0)
}

func (m *MockMovementRepository) GetByID(ctx context.Context, reserveID, movementID uuid.UUID) (*domain.Movement, error) {
	args := m.Called(ctx, reserveID, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}

func (m *MockMovementRepository) ListByReserve(ctx context.Context, reserveID uuid.UUID) ([]*domain.MovementWithReserve, error) {
	args := m.Called(ctx, reserveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MovementWithReserve), args.Error(1)
}

// MockSpaceAccess is a mock implementation of SpaceAccess for testing
type MockSpaceAccess struct {
	mock.Mock
}

func (m *MockSpaceAccess) CanEditSpace(ctx context.Context, principal domain.Principal, spaceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, principal, spaceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpaceAccess) CanViewSpace(ctx context.Context, principal domain.Principal, spaceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, principal, spaceID)
	return args.Bool(0), args.Error(1)
}

func setup() (*Service, *MockReserveRepository, *MockMovementRepository, *MockSpaceAccess) {
	reserveRepo := new(MockReserveRepository)
	movementRepo := new(MockMovementRepository)
	access := new(MockSpaceAccess)
	return NewService(reserveRepo, movementRepo, access), reserveRepo, movementRepo, access
}

func testReserve(spaceID uuid.UUID, balance string) *domain.Reserve {
	return &domain.Reserve{
		ID:            uuid.New(),
		SpaceID:       spaceID,
		Name:          "Vacation Fund",
		CurrentAmount: decimal.RequireFromString(balance),
		Active:        true,
	}
}

func depositInput(amount string) CreateMovementInput {
	return CreateMovementInput{
		Type:   domain.MovementDeposit,
		Amount: decimal.RequireFromString(amount),
		Date:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateMovement_Deposit(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "editor@example.com"}
	reserve := testReserve(spaceID, "50.00")

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanEditSpace", ctx, principal, spaceID).Return(true, nil)
	movementRepo.On("Create", ctx, mock.AnythingOfType("*domain.Movement")).Return(nil)

	created, err := service.CreateMovement(ctx, principal, reserve.ID, depositInput("25.00"))
	require.NoError(t, err)

	assert.Equal(t, reserve.ID, created.ReserveID)
	assert.Equal(t, principal.ID, created.UserID)
	assert.Equal(t, domain.MovementDeposit, created.Type)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("25.00")))
	movementRepo.AssertExpectations(t)
}

func TestCreateMovement_InvalidInputSkipsRepositories(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, _ := setup()

	principal := domain.Principal{ID: uuid.New(), Email: "editor@example.com"}

	tests := []struct {
		name  string
		input CreateMovementInput
	}{
		{
			name: "non-positive amount",
			input: CreateMovementInput{
				Type:   domain.MovementDeposit,
				Amount: decimal.Zero,
				Date:   time.Now(),
			},
		},
		{
			name: "unknown type",
			input: CreateMovementInput{
				Type:   "transfer",
				Amount: decimal.RequireFromString("10.00"),
				Date:   time.Now(),
			},
		},
		{
			name: "excess decimal precision",
			input: CreateMovementInput{
				Type:   domain.MovementDeposit,
				Amount: decimal.RequireFromString("10.005"),
				Date:   time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateMovement(ctx, principal, uuid.New(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	reserveRepo.AssertNotCalled(t, "GetByID")
	movementRepo.AssertNotCalled(t, "Create")
}

func TestCreateMovement_ReserveNotFound(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, _ := setup()

	principal := domain.Principal{ID: uuid.New(), Email: "editor@example.com"}
	reserveID := uuid.New()
	reserveRepo.On("GetByID", ctx, reserveID).Return(nil, domain.ErrReserveNotFound)

	_, err := service.CreateMovement(ctx, principal, reserveID, depositInput("25.00"))
	assert.ErrorIs(t, err, domain.ErrReserveNotFound)
	movementRepo.AssertNotCalled(t, "Create")
}

func TestCreateMovement_ViewerIsForbidden(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "viewer@example.com"}
	reserve := testReserve(spaceID, "50.00")

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanEditSpace", ctx, principal, spaceID).Return(false, nil)

	_, err := service.CreateMovement(ctx, principal, reserve.ID, depositInput("25.00"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	movementRepo.AssertNotCalled(t, "Create")
}

func TestCreateMovement_InsufficientFundsPropagates(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "editor@example.com"}
	reserve := testReserve(spaceID, "100.00")

	fundsErr := &domain.InsufficientFundsError{
		ReserveID: reserve.ID,
		Available: decimal.RequireFromString("100.00"),
		Requested: decimal.RequireFromString("150.00"),
	}

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanEditSpace", ctx, principal, spaceID).Return(true, nil)
	movementRepo.On("Create", ctx, mock.AnythingOfType("*domain.Movement")).Return(fundsErr)

	_, err := service.CreateMovement(ctx, principal, reserve.ID, CreateMovementInput{
		Type:   domain.MovementWithdraw,
		Amount: decimal.RequireFromString("150.00"),
		Date:   time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestDeleteMovement(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "editor@example.com"}
	reserve := testReserve(spaceID, "75.00")
	movementID := uuid.New()

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanEditSpace", ctx, principal, spaceID).Return(true, nil)
	movementRepo.On("Delete", ctx, reserve.ID, movementID).Return(nil)

	err := service.DeleteMovement(ctx, principal, reserve.ID, movementID)
	require.NoError(t, err)
	movementRepo.AssertExpectations(t)
}

func TestDeleteMovement_ViewerIsForbidden(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "viewer@example.com"}
	reserve := testReserve(spaceID, "75.00")

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanEditSpace", ctx, principal, spaceID).Return(false, nil)

	err := service.DeleteMovement(ctx, principal, reserve.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	movementRepo.AssertNotCalled(t, "Delete")
}

func TestDeleteMovement_NotFound(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "editor@example.com"}
	reserve := testReserve(spaceID, "75.00")
	movementID := uuid.New()

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanEditSpace", ctx, principal, spaceID).Return(true, nil)
	movementRepo.On("Delete", ctx, reserve.ID, movementID).Return(domain.ErrMovementNotFound)

	err := service.DeleteMovement(ctx, principal, reserve.ID, movementID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}

func TestListMovements_ViewerIsAllowed(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "viewer@example.com"}
	reserve := testReserve(spaceID, "75.00")

	listed := []*domain.MovementWithReserve{
		{
			Movement: domain.Movement{
				ID:        uuid.New(),
				ReserveID: reserve.ID,
				Type:      domain.MovementDeposit,
				Amount:    decimal.RequireFromString("75.00"),
			},
			Reserve: domain.ReserveSummary{ID: reserve.ID, Name: reserve.Name},
		},
	}

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanViewSpace", ctx, principal, spaceID).Return(true, nil)
	movementRepo.On("ListByReserve", ctx, reserve.ID).Return(listed, nil)

	movements, err := service.ListMovements(ctx, principal, reserve.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, reserve.Name, movements[0].Reserve.Name)
}

func TestListMovements_NonMemberIsForbidden(t *testing.T) {
	ctx := context.Background()
	service, reserveRepo, movementRepo, access := setup()

	spaceID := uuid.New()
	principal := domain.Principal{ID: uuid.New(), Email: "stranger@example.com"}
	reserve := testReserve(spaceID, "75.00")

	reserveRepo.On("GetByID", ctx, reserve.ID).Return(reserve, nil)
	access.On("CanViewSpace", ctx, principal, spaceID).Return(false, nil)

	_, err := service.ListMovements(ctx, principal, reserve.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	movementRepo.AssertNotCalled(t, "ListByReserve")
}
