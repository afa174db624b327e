//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketfin/pocketfin-backend/internal/adapter/httpapi"
	"github.com/pocketfin/pocketfin-backend/internal/adapter/repository/postgres"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
)

var (
	db        *postgres.DB
	apiURL    string
	authToken string
	owner     = domain.Principal{ID: uuid.New(), Email: "e2e-owner@example.com"}
	testSpace uuid.UUID
)

// TestMain sets up the test environment: a database connection for direct
// state assertions, a signed token for the running server, and a dedicated
// space so repeated runs don't step on each other.
func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	db, err = postgres.NewDB(getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	apiURL = getAPIAddress()

	authToken, err = httpapi.IssueToken(getJWTSecret(), owner, time.Hour)
	if err != nil {
		panic(fmt.Sprintf("Failed to issue token: %v", err))
	}

	if err := setupTestSpace(ctx); err != nil {
		panic(fmt.Sprintf("Failed to setup test space: %v", err))
	}

	os.Exit(m.Run())
}

// setupTestSpace creates a fresh space through the repository so every run
// starts from a known membership state.
func setupTestSpace(ctx context.Context) error {
	spaceRepo := postgres.NewSpaceRepository(db)

	now := time.Now().UTC()
	space := &domain.Space{
		ID:         uuid.New(),
		Name:       fmt.Sprintf("E2E %s", now.Format("2006-01-02 15:04:05")),
		OwnerEmail: owner.Email,
		CreatedAt:  now,
	}
	member := &domain.SpaceMember{
		ID:        uuid.New(),
		SpaceID:   space.ID,
		Email:     owner.Email,
		Role:      domain.RoleOwner,
		CreatedAt: now,
	}
	if err := spaceRepo.Create(ctx, space, member); err != nil {
		return err
	}
	testSpace = space.ID
	return nil
}

func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	dbname := envOr("DB_NAME", "pocketfin")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

func getAPIAddress() string {
	return envOr("API_URL", "http://localhost:8080")
}

func getJWTSecret() []byte {
	return []byte(envOr("JWT_SECRET", "dev-secret"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// call sends an authenticated request and decodes the response envelope.
func call(t *testing.T, method, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		require.NoError(t, json.NewEncoder(buf).Encode(body))
	}

	req, err := http.NewRequest(method, apiURL+path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	envelope := make(map[string]json.RawMessage)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func decodeData[T any](t *testing.T, envelope map[string]json.RawMessage) T {
	t.Helper()
	var out T
	require.Contains(t, envelope, "data")
	require.NoError(t, json.Unmarshal(envelope["data"], &out))
	return out
}

// dbBalance reads the cached balance straight from the reserves row, bypassing
// the API, so the tests verify what is actually persisted.
func dbBalance(t *testing.T, reserveID string) decimal.Decimal {
	t.Helper()
	var raw string
	err := db.QueryRowContext(context.Background(),
		`SELECT current_amount FROM reserves WHERE id = $1`, reserveID).Scan(&raw)
	require.NoError(t, err)
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

func createReserve(t *testing.T, name string) httpapi.ReserveDTO {
	t.Helper()
	status, env := call(t, http.MethodPost, "/api/spaces/"+testSpace.String()+"/reserves",
		httpapi.CreateReserveRequest{Name: name, Color: "#00aa55", Icon: "vault"})
	require.Equal(t, http.StatusCreated, status)
	return decodeData[httpapi.ReserveDTO](t, env)
}

// TestEndToEndFlow walks the full reserve lifecycle: create, deposit,
// withdraw, delete a movement, and verify that the cached balance in the
// database tracks every step.
func TestEndToEndFlow(t *testing.T) {
	rsv := createReserve(t, "E2E Vacation")
	require.Equal(t, "0.00", rsv.CurrentAmount)
	base := "/api/reserves/" + rsv.ID

	// Step A: deposit 1000.00
	status, env := call(t, http.MethodPost, base+"/movements", map[string]any{
		"type": "deposit", "amount": json.Number("1000.00"), "date": "2024-06-01",
		"description": "Initial funding",
	})
	require.Equal(t, http.StatusCreated, status)
	deposit := decodeData[httpapi.MovementDTO](t, env)
	assert.Equal(t, owner.ID.String(), deposit.UserID)

	assert.True(t, dbBalance(t, rsv.ID).Equal(decimal.NewFromInt(1000)),
		"balance row should hold 1000.00 after the deposit")

	// Step B: withdraw 250.00
	status, env = call(t, http.MethodPost, base+"/movements", map[string]any{
		"type": "withdraw", "amount": json.Number("250.00"), "date": "2024-06-05",
	})
	require.Equal(t, http.StatusCreated, status)
	withdrawal := decodeData[httpapi.MovementDTO](t, env)

	assert.True(t, dbBalance(t, rsv.ID).Equal(decimal.NewFromInt(750)),
		"balance row should hold 750.00 after the withdrawal")

	// The API reads the same cached value.
	status, env = call(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "750.00", decodeData[httpapi.ReserveDTO](t, env).CurrentAmount)

	// Step C: listing returns both movements, date ascending, with the
	// reserve summary embedded.
	status, env = call(t, http.MethodGet, base+"/movements", nil)
	require.Equal(t, http.StatusOK, status)
	movements := decodeData[[]httpapi.MovementDTO](t, env)
	require.Len(t, movements, 2)
	assert.Equal(t, deposit.ID, movements[0].ID)
	assert.Equal(t, withdrawal.ID, movements[1].ID)
	require.NotNil(t, movements[0].Reserve)
	assert.Equal(t, "E2E Vacation", movements[0].Reserve.Name)

	// Step D: deleting the withdrawal restores the balance exactly.
	status, env = call(t, http.MethodDelete, base+"/movements/"+withdrawal.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var success bool
	require.NoError(t, json.Unmarshal(env["success"], &success))
	assert.True(t, success)

	assert.True(t, dbBalance(t, rsv.ID).Equal(decimal.NewFromInt(1000)),
		"deleting the withdrawal should restore the balance to 1000.00")

	// The ledger row is gone.
	var count int
	err := db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM reserve_movements WHERE id = $1`, withdrawal.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// TestBalanceMatchesLedger verifies the core consistency invariant against
// the real database: the cached balance always equals the signed sum of the
// surviving ledger rows.
func TestBalanceMatchesLedger(t *testing.T) {
	rsv := createReserve(t, "E2E Ledger Check")
	base := "/api/reserves/" + rsv.ID

	steps := []struct {
		mvType string
		amount string
	}{
		{"deposit", "100.00"},
		{"deposit", "40.50"},
		{"withdraw", "60.25"},
		{"deposit", "19.75"},
		{"withdraw", "100.00"},
	}

	for i, s := range steps {
		date := fmt.Sprintf("2024-07-%02d", i+1)
		status, _ := call(t, http.MethodPost, base+"/movements", map[string]any{
			"type": s.mvType, "amount": json.Number(s.amount), "date": date,
		})
		require.Equal(t, http.StatusCreated, status, "step %d (%s %s)", i, s.mvType, s.amount)
	}

	var ledgerSum string
	err := db.QueryRowContext(context.Background(), `
		SELECT COALESCE(SUM(CASE WHEN type = 'withdraw' THEN -amount ELSE amount END), 0)
		FROM reserve_movements
		WHERE reserve_id = $1
	`, rsv.ID).Scan(&ledgerSum)
	require.NoError(t, err)

	expected, err := decimal.NewFromString(ledgerSum)
	require.NoError(t, err)
	assert.True(t, dbBalance(t, rsv.ID).Equal(expected),
		"cached balance should equal the ledger sum: balance %s, ledger %s",
		dbBalance(t, rsv.ID), expected)
}

// TestDeleteMovement_RepeatedDeleteReversesOnlyOnce pins the reversal path
// against the real postgres adapter: once a movement is gone, a second delete
// gets 404 and the cached balance keeps the single reversal.
func TestDeleteMovement_RepeatedDeleteReversesOnlyOnce(t *testing.T) {
	rsv := createReserve(t, "E2E Double Delete")
	base := "/api/reserves/" + rsv.ID

	status, _ := call(t, http.MethodPost, base+"/movements", map[string]any{
		"type": "deposit", "amount": json.Number("100.00"), "date": "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := call(t, http.MethodPost, base+"/movements", map[string]any{
		"type": "deposit", "amount": json.Number("50.00"), "date": "2024-06-02",
	})
	require.Equal(t, http.StatusCreated, status)
	deposit := decodeData[httpapi.MovementDTO](t, env)

	status, _ = call(t, http.MethodDelete, base+"/movements/"+deposit.ID, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, dbBalance(t, rsv.ID).Equal(decimal.NewFromInt(100)))

	status, _ = call(t, http.MethodDelete, base+"/movements/"+deposit.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.True(t, dbBalance(t, rsv.ID).Equal(decimal.NewFromInt(100)),
		"a repeated delete must not apply the reversal a second time")
}

// TestNegativeScenarios tests error handling for invalid inputs
func TestNegativeScenarios(t *testing.T) {
	rsv := createReserve(t, "E2E Negatives")
	base := "/api/reserves/" + rsv.ID

	status, _ := call(t, http.MethodPost, base+"/movements", map[string]any{
		"type": "deposit", "amount": json.Number("30.00"), "date": "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, status)

	t.Run("InsufficientFunds", func(t *testing.T) {
		status, env := call(t, http.MethodPost, base+"/movements", map[string]any{
			"type": "withdraw", "amount": json.Number("30.01"), "date": "2024-06-02",
		})
		require.Equal(t, http.StatusBadRequest, status)

		var msg string
		require.NoError(t, json.Unmarshal(env["error"], &msg))
		assert.Equal(t, "Insufficient funds in reserve", msg)

		// Nothing was written.
		assert.True(t, dbBalance(t, rsv.ID).Equal(decimal.NewFromInt(30)))
		var count int
		err := db.QueryRowContext(context.Background(),
			`SELECT COUNT(*) FROM reserve_movements WHERE reserve_id = $1`, rsv.ID).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		status, _ := call(t, http.MethodPost, base+"/movements", map[string]any{
			"type": "deposit", "amount": json.Number("-100.00"), "date": "2024-06-02",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("ExcessPrecision", func(t *testing.T) {
		status, _ := call(t, http.MethodPost, base+"/movements", map[string]any{
			"type": "deposit", "amount": json.Number("10.005"), "date": "2024-06-02",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("NonExistentReserve", func(t *testing.T) {
		status, _ := call(t, http.MethodPost, "/api/reserves/"+uuid.NewString()+"/movements", map[string]any{
			"type": "deposit", "amount": json.Number("10.00"), "date": "2024-06-02",
		})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("MalformedUUID", func(t *testing.T) {
		status, _ := call(t, http.MethodGet, "/api/reserves/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

// TestReadFlow tests the read APIs: space listing, reserve listing, and the
// reserve detail view.
func TestReadFlow(t *testing.T) {
	rsv := createReserve(t, "E2E Read Flow")

	t.Run("ListSpaces", func(t *testing.T) {
		status, env := call(t, http.MethodGet, "/api/spaces", nil)
		require.Equal(t, http.StatusOK, status)

		spaces := decodeData[[]httpapi.SpaceDTO](t, env)
		var found bool
		for _, s := range spaces {
			if s.ID == testSpace.String() {
				found = true
				assert.Equal(t, owner.Email, s.OwnerEmail)
			}
		}
		assert.True(t, found, "test space should appear in the caller's space list")
	})

	t.Run("ListReserves", func(t *testing.T) {
		status, env := call(t, http.MethodGet, "/api/spaces/"+testSpace.String()+"/reserves", nil)
		require.Equal(t, http.StatusOK, status)

		reserves := decodeData[[]httpapi.ReserveDTO](t, env)
		var found bool
		for _, r := range reserves {
			if r.ID == rsv.ID {
				found = true
				assert.Equal(t, "E2E Read Flow", r.Name)
			}
		}
		assert.True(t, found, "created reserve should appear in the space listing")
	})

	t.Run("GetReserve", func(t *testing.T) {
		status, env := call(t, http.MethodGet, "/api/reserves/"+rsv.ID, nil)
		require.Equal(t, http.StatusOK, status)

		got := decodeData[httpapi.ReserveDTO](t, env)
		assert.Equal(t, rsv.ID, got.ID)
		assert.Equal(t, testSpace.String(), got.SpaceID)
		assert.True(t, got.Active)
	})
}
