package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omega-realm/admin-api/internal/database"
	"github.com/omega-realm/admin-api/internal/repository"
)

func newAccountsHandler(t *testing.T) (*AccountsHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccountsHandler(repository.NewAccounts(&database.DB{DB: db})), mock
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"login too short", `{"login":"abc","password":"secret1"}`},
		{"login too long", `{"login":"` + strings.Repeat("a", 33) + `","password":"secret1"}`},
		{"password too short", `{"login":"tester01","password":"12345"}`},
		{"password too long", `{"login":"tester01","password":"` + strings.Repeat("p", 33) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newAccountsHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/api/login/account/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec).Details)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegisterConflict(t *testing.T) {
	h, mock := newAccountsHandler(t)

	mock.ExpectQuery(`SELECT 1 FROM accounts WHERE login = \?`).
		WithArgs("tester01").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	req := httptest.NewRequest(http.MethodPost, "/api/login/account/register",
		strings.NewReader(`{"login":"tester01","password":"secret1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterCreatesAccount(t *testing.T) {
	h, mock := newAccountsHandler(t)

	mock.ExpectQuery(`SELECT 1 FROM accounts WHERE login = \?`).
		WithArgs("tester01").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO accounts \(login, password, accessLevel, email\) VALUES \(\?, \?, 0, \?\)`).
		WithArgs("tester01", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/login/account/register",
		strings.NewReader(`{"login":"tester01","password":"secret1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangePasswordNotFound(t *testing.T) {
	h, mock := newAccountsHandler(t)

	mock.ExpectQuery(`SELECT 1 FROM accounts WHERE login = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	req := httptest.NewRequest(http.MethodPut, "/api/login/account/change-password",
		strings.NewReader(`{"login":"ghost","newPassword":"secret1"}`))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRejectsPastDate(t *testing.T) {
	h, mock := newAccountsHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login/account/tester01/ban",
		strings.NewReader(`{"banExpire":"2001-01-01","reason":"rmt"}`))
	req.SetPathValue("login", "tester01")
	rec := httptest.NewRecorder()
	h.Ban(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "future")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRejectsGarbageDate(t *testing.T) {
	h, mock := newAccountsHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login/account/tester01/ban",
		strings.NewReader(`{"banExpire":"soon"}`))
	req.SetPathValue("login", "tester01")
	rec := httptest.NewRecorder()
	h.Ban(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnbanIsIdempotent(t *testing.T) {
	h, mock := newAccountsHandler(t)

	for range 2 {
		mock.ExpectQuery(`SELECT 1 FROM accounts WHERE login = \?`).
			WithArgs("tester01").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec(`UPDATE accounts SET ban_expire = \? WHERE login = \?`).
			WithArgs(int64(0), "tester01").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/login/account/tester01/unban", nil)
		req.SetPathValue("login", "tester01")
		rec := httptest.NewRecorder()
		h.Unban(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccountNotFound(t *testing.T) {
	h, mock := newAccountsHandler(t)

	mock.ExpectQuery(`FROM accounts\s+WHERE login = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"login", "password", "accessLevel", "lastactive", "lastIP",
			"lastHwid", "lastServerId", "ban_expire", "email",
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/login/account/ghost", nil)
	req.SetPathValue("login", "ghost")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListInternalErrorHidesDetails(t *testing.T) {
	h, mock := newAccountsHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM accounts`).
		WillReturnError(assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/api/login/account/list", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Internal server error", body.Error)
	assert.NotContains(t, body.Error, assert.AnError.Error())
}
