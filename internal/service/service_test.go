package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dirk.krummacker/static-website/internal/config"
)

const testID = "0f8e2a3c-6f43-4a53-9a0e-2f1c2d3e4f50"

var testTime = time.Date(2024, time.May, 1, 12, 30, 0, 123456000, time.UTC)

// createMockObjects builds a mock database handle and a mock object for defining our expected SQL
// calls.
func createMockObjects(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	return db, mock
}

// expectPreparedStatements instructs the mock object to expect that several statements are being
// prepared.
func expectPreparedStatements(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare("INSERT INTO contact_messages")
	mock.ExpectPrepare("SELECT \\* FROM contact_messages WHERE id")
}

// initializeService sets up the service with the mock database, a fixed clock and a fixed id
// generator, and returns a handle to the gin engine against which requests can be executed.
func initializeService(t *testing.T, db *sql.DB) *gin.Engine {
	require.NoError(t, SetupDatabaseWrapper(db))
	now = func() time.Time { return testTime }
	newID = func() string { return testID }
	t.Cleanup(func() {
		now = time.Now
		newID = uuid.NewString
	})
	gin.SetMode(gin.ReleaseMode)
	return SetupHttpRouter(&config.Config{GinLogging: "off", CORSAllowOrigin: "https://example.com"})
}

// runTest executes the HTTP request with the specified arguments and returns the response.
func runTest(t *testing.T, db *sql.DB, method string, url string, body string) *httptest.ResponseRecorder {
	router := initializeService(t, db)
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(method, url, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)
	return recorder
}

// responseBody decodes the JSON response into a map.
func responseBody(recorder *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	json.Unmarshal(recorder.Body.Bytes(), &body)
	return body
}

// TestPost stores a valid message. It expects the trimmed fields, the category, timestamp and
// ttl to be written, and the new id to be returned.
func TestPost(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectExec("INSERT INTO contact_messages").
		WithArgs(
			testID,
			"contact_form",
			"Erika Mustermann",
			"erika@example.com",
			"Hallo",
			"2024-05-01T12:30:00.123456",
			testTime.Add(365*24*time.Hour).Unix(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Run test and compare results
	recorder := runTest(t, db, "POST", "/contact",
		`{"name": "  Erika Mustermann ", "email": "erika@example.com", "message": "Hallo\n"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	body := responseBody(recorder)
	assert.Equal(t, "Contact form submitted successfully", body["message"])
	assert.Equal(t, testID, body["id"])
	assert.Equal(t, "https://example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", recorder.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST, OPTIONS", recorder.Header().Get("Access-Control-Allow-Methods"))
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPostMissingFields posts messages lacking a field, or with a field of blanks only. It
// expects the BAD REQUEST status code and no database access.
func TestPostMissingFields(t *testing.T) {
	bodies := []string{
		`{"email": "erika@example.com", "message": "Hallo"}`,
		`{"name": "Erika", "message": "Hallo"}`,
		`{"name": "Erika", "email": "erika@example.com", "message": "   "}`,
		`{}`,
	}
	for _, b := range bodies {
		db, mock := createMockObjects(t)
		expectPreparedStatements(mock)

		recorder := runTest(t, db, "POST", "/contact", b)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, b)
		assert.Equal(t, "All fields are required", responseBody(recorder)["error"], b)
		assert.Equal(t, "https://example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
		db.Close()
	}
}

// TestPostInvalidJSON expects the BAD REQUEST status code for a body that is not JSON.
func TestPostInvalidJSON(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	recorder := runTest(t, db, "POST", "/contact", `name=Erika`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid JSON", responseBody(recorder)["error"])
}

// TestPostDatabaseError expects the INTERNAL SERVER ERROR status code when the insert fails.
func TestPostDatabaseError(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectExec("INSERT INTO contact_messages").
		WillReturnError(errors.New("table is full"))

	recorder := runTest(t, db, "POST", "/contact",
		`{"name": "Erika", "email": "erika@example.com", "message": "Hallo"}`)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "Internal server error", responseBody(recorder)["error"])
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPreflight expects the CORS preflight request to be answered without content.
func TestPreflight(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	recorder := runTest(t, db, "OPTIONS", "/contact", "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "POST, OPTIONS", recorder.Header().Get("Access-Control-Allow-Methods"))
}

// TestGet executes a GET request for a stored message. It expects the JSON of the message.
func TestGet(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	rows := mock.NewRows([]string{"id", "category", "name", "email", "message", "timestamp", "ttl"}).
		AddRow(testID, "contact_form", "Erika Mustermann", "erika@example.com", "Hallo", "2024-05-01T12:30:00.123456", int64(1746102600))
	mock.ExpectQuery("SELECT \\* FROM contact_messages WHERE id").
		WithArgs(testID).
		WillReturnRows(rows)

	recorder := runTest(t, db, "GET", "/contact/"+testID, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	body := responseBody(recorder)
	assert.Equal(t, testID, body["id"])
	assert.Equal(t, "contact_form", body["category"])
	assert.Equal(t, "Erika Mustermann", body["name"])
	assert.Equal(t, "erika@example.com", body["email"])
	assert.Equal(t, "Hallo", body["message"])
	assert.Equal(t, 1746102600.0, body["ttl"])
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetUnknownID expects NOT FOUND for a well formed id without a stored message.
func TestGetUnknownID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectQuery("SELECT \\* FROM contact_messages WHERE id").
		WithArgs(testID).
		WillReturnRows(mock.NewRows([]string{"id", "category", "name", "email", "message", "timestamp", "ttl"}))

	recorder := runTest(t, db, "GET", "/contact/"+testID, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "contact message not found", responseBody(recorder)["message"])
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetInvalidID expects NOT FOUND without a database query for an id that is no UUID.
func TestGetInvalidID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	recorder := runTest(t, db, "GET", "/contact/invalid", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestHealth(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)
	mock.ExpectPing()

	recorder := runTest(t, db, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", responseBody(recorder)["status"])
}

func TestHealthDatabaseDown(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	recorder := runTest(t, db, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

// TestSetupFailsWhenPrepareFails expects the error of a failing prepare to be returned.
func TestSetupFailsWhenPrepareFails(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	mock.ExpectPrepare("INSERT INTO contact_messages").WillReturnError(errors.New("no such table"))

	assert.Error(t, SetupDatabaseWrapper(db))
}
