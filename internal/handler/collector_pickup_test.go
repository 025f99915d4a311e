package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/waste-pickup/internal/repository"
)

var pickupColumns = []string{
	"id", "user_id", "collector_id", "waste_type", "scheduled_date", "scheduled_time",
	"pickup_status", "notes", "pickup_frequency", "latitude", "longitude", "created_at",
}

var userColumns = []string{
	"id", "name", "email", "password_hash", "role", "phone", "address", "city",
	"vehicle_type", "license_number", "org_name", "latitude", "longitude",
	"is_active", "created_at", "updated_at",
}

func newCollectorTestHandler(t *testing.T) (*CollectorHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewCollectorHandler(db,
		repository.NewUserRepo(db),
		repository.NewPickupRepo(db),
		repository.NewWasteLogRepo(db),
		repository.NewPaymentRepo(db),
		repository.NewRewardRepo(db),
		repository.NewStandingRepo(db))
	return h, mock
}

// collectorCall builds an authenticated echo context for collector 9
// hitting a /:id route.
func collectorCall(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")
	c.Set("user_id", float64(9))
	c.Set("role", "COLLECTOR")
	return c, rec
}

func pickupRowFor(status, wasteType string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(pickupColumns).
		AddRow(42, 7, 9, wasteType, now.AddDate(0, 0, 1), "14:00:00", status, "", nil, nil, nil, now)
}

func userRowFor(role string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userColumns).
		AddRow(7, "Asha", "asha@example.com", "hash", role, "99", "12 Lane", "Pune",
			nil, nil, nil, nil, nil, true, now, now)
}

func TestRejectCancelsOwnAssignment(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectExec("UPDATE pickup_requests SET pickup_status=.").
		WithArgs("CANCELLED", 42, 9, "ASSIGNED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := collectorCall(t, "")
	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectOtherCollectorsPickupForbidden(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectExec("UPDATE pickup_requests SET pickup_status=.").
		WithArgs("CANCELLED", 42, 9, "ASSIGNED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT pickup_status, collector_id FROM pickup_requests WHERE id=. LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"pickup_status", "collector_id"}).AddRow("ASSIGNED", 8))

	c, rec := collectorCall(t, "")
	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectCompletedPickupConflicts(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectExec("UPDATE pickup_requests SET pickup_status=.").
		WithArgs("CANCELLED", 42, 9, "ASSIGNED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT pickup_status, collector_id FROM pickup_requests WHERE id=. LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"pickup_status", "collector_id"}).AddRow("COMPLETED", 9))

	c, rec := collectorCall(t, "")
	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateBillFirstBillOpensPaymentAndTransitions(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pickup_requests WHERE id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(pickupRowFor("ASSIGNED", "E_WASTE"))
	mock.ExpectQuery("FROM users WHERE id=. LIMIT 1").
		WillReturnRows(userRowFor("BUSINESS"))
	mock.ExpectExec("INSERT INTO waste_logs").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("SELECT id, status FROM payments WHERE pickup_id=. LIMIT 1 FOR UPDATE").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(7, 42, 499.0, "PENDING").
		WillReturnResult(sqlmock.NewResult(55, 1))
	mock.ExpectExec("UPDATE pickup_requests SET pickup_status=.").
		WithArgs("PAYMENT_PENDING", 42, "ASSIGNED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := collectorCall(t, `{"weight_kg":12.5,"amount":499.0}`)
	require.NoError(t, h.GenerateBill(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_id":55`)
	assert.Contains(t, rec.Body.String(), "PAYMENT_PENDING")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Re-billing before settlement must revise the existing payment row in
// place; a second INSERT would let one pickup carry two bills.
func TestGenerateBillRebillUpdatesExistingPayment(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pickup_requests WHERE id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(pickupRowFor("PAYMENT_PENDING", "E_WASTE"))
	mock.ExpectQuery("FROM users WHERE id=. LIMIT 1").
		WillReturnRows(userRowFor("BUSINESS"))
	mock.ExpectExec("INSERT INTO waste_logs").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("SELECT id, status FROM payments WHERE pickup_id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(55, "PENDING"))
	mock.ExpectExec("UPDATE payments SET amount=.").
		WithArgs(650.0, 55, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Status already PAYMENT_PENDING: no transition, straight to commit.
	mock.ExpectCommit()

	c, rec := collectorCall(t, `{"weight_kg":14.0,"amount":650.0}`)
	require.NoError(t, h.GenerateBill(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_id":55`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateBillSettledPaymentConflicts(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pickup_requests WHERE id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(pickupRowFor("PAYMENT_PENDING", "E_WASTE"))
	mock.ExpectQuery("FROM users WHERE id=. LIMIT 1").
		WillReturnRows(userRowFor("BUSINESS"))
	mock.ExpectExec("INSERT INTO waste_logs").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("SELECT id, status FROM payments WHERE pickup_id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(55, "COMPLETED"))
	mock.ExpectRollback()

	c, rec := collectorCall(t, `{"weight_kg":14.0,"amount":650.0}`)
	require.NoError(t, h.GenerateBill(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Completing a household pickup writes exactly one ledger event and one
// standing bump, in the same transaction as the status flip.  5 kg of
// biodegradable waste at factor 1.0 credits 5 points.
func TestCompleteHouseholdCreditsReward(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pickup_requests WHERE id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(pickupRowFor("ASSIGNED", "BIODEGRADABLE"))
	mock.ExpectQuery("FROM users WHERE id=. LIMIT 1").
		WillReturnRows(userRowFor("HOUSEHOLD"))
	mock.ExpectExec("INSERT INTO waste_logs").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO eco_rewards").
		WithArgs(7, 42, 5, 5.0, "PICKUP_COMPLETED").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("UPDATE household_details SET total_waste_kg").
		WithArgs(5.0, 5, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE pickup_requests SET pickup_status=.").
		WithArgs("COMPLETED", 42, "ASSIGNED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := collectorCall(t, `{"weight_kg":5.0}`)
	require.NoError(t, h.Complete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points_earned":5`)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A business pickup cannot jump from ASSIGNED to COMPLETED; it has to be
// billed and settled first.  No ledger write may leak out of the refusal.
func TestCompleteBusinessFromAssignedConflicts(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pickup_requests WHERE id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(pickupRowFor("ASSIGNED", "E_WASTE"))
	mock.ExpectQuery("FROM users WHERE id=. LIMIT 1").
		WillReturnRows(userRowFor("BUSINESS"))
	mock.ExpectRollback()

	c, rec := collectorCall(t, `{"weight_kg":10.0}`)
	require.NoError(t, h.Complete(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Closing a parked PAID business pickup reuses the weight captured at
// billing and bumps weight plus sustainability score, never eco points.
func TestCompleteBusinessPaidUsesBilledWeight(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM pickup_requests WHERE id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(pickupRowFor("PAID", "E_WASTE"))
	mock.ExpectQuery("FROM users WHERE id=. LIMIT 1").
		WillReturnRows(userRowFor("BUSINESS"))
	mock.ExpectQuery("FROM waste_logs WHERE pickup_id=. LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pickup_id", "waste_type", "weight_kg", "photo_url", "notes", "collected_at"}).
			AddRow(3, 42, "E_WASTE", 10.0, nil, "", now))
	mock.ExpectExec("INSERT INTO eco_rewards").
		WithArgs(7, 42, 20, 10.0, "PICKUP_COMPLETED").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("UPDATE business_details").
		WithArgs(10.0, 100.0, 5.0, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE pickup_requests SET pickup_status=.").
		WithArgs("COMPLETED", 42, "PAID").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := collectorCall(t, `{}`)
	require.NoError(t, h.Complete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points_earned":20`)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A second completion attempt finds the row already COMPLETED and stops
// before any ledger write, so one completion means one reward event.
func TestCompleteTwiceConflicts(t *testing.T) {
	h, mock := newCollectorTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pickup_requests WHERE id=. LIMIT 1 FOR UPDATE").
		WillReturnRows(pickupRowFor("COMPLETED", "BIODEGRADABLE"))
	mock.ExpectQuery("FROM users WHERE id=. LIMIT 1").
		WillReturnRows(userRowFor("HOUSEHOLD"))
	mock.ExpectRollback()

	c, rec := collectorCall(t, `{"weight_kg":5.0}`)
	require.NoError(t, h.Complete(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
