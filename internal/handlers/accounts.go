package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/omega-realm/admin-api/internal/query"
	"github.com/omega-realm/admin-api/internal/repository"
)

type AccountsHandler struct {
	accounts *repository.Accounts
}

func NewAccountsHandler(accounts *repository.Accounts) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// RegisterRequest represents the account creation request body
type RegisterRequest struct {
	Login    string  `json:"login"`
	Password string  `json:"password"`
	Email    *string `json:"email"`
}

// ChangePasswordRequest represents the password change request body
type ChangePasswordRequest struct {
	Login       string `json:"login"`
	NewPassword string `json:"newPassword"`
}

// BanRequest represents the ban request body
type BanRequest struct {
	BanExpire string `json:"banExpire"`
	Reason    string `json:"reason"`
}

// Register handles account creation
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Login) < 4 || len(req.Login) > 32 {
		writeValidationError(w, "Login must be between 4 and 32 characters")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 32 {
		writeValidationError(w, "Password must be between 6 and 32 characters")
		return
	}

	exists, err := h.accounts.Exists(r.Context(), req.Login)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "Account already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Accounts] Failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.accounts.Create(r.Context(), req.Login, string(hash), req.Email); err != nil {
		writeRepositoryError(w, err, "Account not found")
		return
	}

	log.Printf("[Accounts] Account created: %s", req.Login)
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Account created"})
}

// ChangePassword handles password updates
func (h *AccountsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.NewPassword) < 6 || len(req.NewPassword) > 32 {
		writeValidationError(w, "Password must be between 6 and 32 characters")
		return
	}

	exists, err := h.accounts.Exists(r.Context(), req.Login)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Accounts] Failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hashStr := string(hash)
	if err := h.accounts.Update(r.Context(), req.Login, repository.AccountUpdate{PasswordHash: &hashStr}); err != nil {
		writeRepositoryError(w, err, "Account not found")
		return
	}

	log.Printf("[Accounts] Password changed: %s", req.Login)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password changed"})
}

// List returns one page of accounts matching the query filters
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := parseAccountFilters(q)
	opts := query.ParsePageOptions(
		q.Get("page"), q.Get("limit"), q.Get("sortBy"), q.Get("sortOrder"),
		repository.AccountSortFields, repository.AccountDefaultSort,
	)

	accounts, pagination, err := h.accounts.List(r.Context(), filters, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accounts":   accounts,
		"pagination": pagination,
	})
}

// Get returns one account by login
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	login := r.PathValue("login")

	account, err := h.accounts.Load(r.Context(), login)
	if err != nil {
		writeRepositoryError(w, err, "Account not found")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// History returns one page of an account's login events
func (h *AccountsHandler) History(w http.ResponseWriter, r *http.Request) {
	login := r.PathValue("login")

	exists, err := h.accounts.Exists(r.Context(), login)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	q := r.URL.Query()
	opts := query.ParsePageOptions(
		q.Get("page"), q.Get("limit"), "", "",
		nil, "time",
	)

	history, pagination, err := h.accounts.LoginHistory(r.Context(), login, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loginHistory": history,
		"pagination":   pagination,
	})
}

// Delete removes an account and its login history
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	login := r.PathValue("login")

	if err := h.accounts.Delete(r.Context(), login); err != nil {
		writeRepositoryError(w, err, "Account not found")
		return
	}

	log.Printf("[Accounts] Account deleted: %s", login)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Account deleted"})
}

// Ban sets an account's ban expiry. The expiry must be in the future.
func (h *AccountsHandler) Ban(w http.ResponseWriter, r *http.Request) {
	login := r.PathValue("login")

	var req BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	banExpire, ok := query.ParseTimestamp(req.BanExpire)
	if !ok || banExpire <= time.Now().Unix() {
		writeValidationError(w, "banExpire must be a future date")
		return
	}

	exists, err := h.accounts.Exists(r.Context(), login)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	if err := h.accounts.Update(r.Context(), login, repository.AccountUpdate{BanExpire: &banExpire}); err != nil {
		writeRepositoryError(w, err, "Account not found")
		return
	}

	if req.Reason != "" {
		log.Printf("[Accounts] Account banned: %s until %d (reason: %s)", login, banExpire, req.Reason)
	} else {
		log.Printf("[Accounts] Account banned: %s until %d", login, banExpire)
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Account banned"})
}

// Unban clears an account's ban expiry. Unbanning an account that is
// not banned succeeds as well.
func (h *AccountsHandler) Unban(w http.ResponseWriter, r *http.Request) {
	login := r.PathValue("login")

	exists, err := h.accounts.Exists(r.Context(), login)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	var zero int64
	if err := h.accounts.Update(r.Context(), login, repository.AccountUpdate{BanExpire: &zero}); err != nil {
		writeRepositoryError(w, err, "Account not found")
		return
	}

	log.Printf("[Accounts] Account unbanned: %s", login)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Account unbanned"})
}

// parseAccountFilters normalizes the raw account list query into a
// typed filter set. Malformed values are dropped rather than erroring.
func parseAccountFilters(q url.Values) repository.AccountFilters {
	return repository.AccountFilters{
		Login:          q.Get("login"),
		Email:          q.Get("email"),
		LastIP:         q.Get("lastIP"),
		LastHWID:       q.Get("lastHWID"),
		LastServerID:   query.OptionalInt(q.Get("lastServerId")),
		AccessLevel:    query.OptionalInt(q.Get("accessLevel")),
		LastActiveFrom: query.OptionalTimestamp(q.Get("lastActiveFrom")),
		LastActiveTo:   query.OptionalTimestamp(q.Get("lastActiveTo")),
		Banned:         query.ParseFlag(q.Get("isBanned")),
	}
}
