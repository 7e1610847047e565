package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/omega-realm/admin-api/internal/database"
	"github.com/omega-realm/admin-api/internal/models"
	"github.com/omega-realm/admin-api/internal/query"
)

// Columns the account filter set may touch. Closed set: the builder
// drops conditions on anything else.
var accountColumns = []string{
	"login", "email", "lastIP", "lastHwid", "lastServerId",
	"accessLevel", "lastactive", "ban_expire",
}

// AccountSortFields is the sort allow-list for account lists
var AccountSortFields = []string{
	"login", "accessLevel", "lastactive", "lastServerId", "ban_expire",
}

// AccountDefaultSort is the fallback sort field for account lists
const AccountDefaultSort = "login"

const accountSelect = `
	SELECT login, password, accessLevel, lastactive, lastIP, lastHwid, lastServerId, ban_expire, email
	FROM accounts
`

// AccountFilters is the typed filter set for account lists.
// Zero values mean the filter is absent.
type AccountFilters struct {
	Login          string
	Email          string
	LastIP         string
	LastHWID       string
	LastServerID   *int
	AccessLevel    *int
	LastActiveFrom *int64
	LastActiveTo   *int64
	Banned         bool
}

func (f AccountFilters) build(now time.Time) *query.Builder {
	b := query.NewBuilder(accountColumns)
	if f.Login != "" {
		b.Like("login", f.Login)
	}
	if f.Email != "" {
		b.Like("email", f.Email)
	}
	if f.LastIP != "" {
		b.Like("lastIP", f.LastIP)
	}
	if f.LastHWID != "" {
		b.Like("lastHwid", f.LastHWID)
	}
	if f.LastServerID != nil {
		b.Equal("lastServerId", *f.LastServerID)
	}
	if f.AccessLevel != nil {
		b.Equal("accessLevel", *f.AccessLevel)
	}
	if f.LastActiveFrom != nil {
		b.AtLeast("lastactive", *f.LastActiveFrom)
	}
	if f.LastActiveTo != nil {
		b.AtMost("lastactive", *f.LastActiveTo)
	}
	if f.Banned {
		b.GreaterThan("ban_expire", now.Unix())
	}
	return b
}

// AccountUpdate is a partial update: nil fields are left untouched
type AccountUpdate struct {
	PasswordHash *string
	AccessLevel  *int
	LastServerID *int
	BanExpire    *int64
	Email        *string
}

// Accounts provides access to the login database
type Accounts struct {
	db *database.DB
}

func NewAccounts(db *database.DB) *Accounts {
	return &Accounts{db: db}
}

// Exists reports whether an account with the given login exists
func (r *Accounts) Exists(ctx context.Context, login string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE login = ?", login).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		log.Printf("[Accounts] Exists query failed for %s: %v", login, err)
		return false, err
	}
	return true, nil
}

// Create inserts a new account with default access level 0 and no
// last-active value. Returns ErrConflict when the login is taken.
func (r *Accounts) Create(ctx context.Context, login, passwordHash string, email *string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (login, password, accessLevel, email) VALUES (?, ?, 0, ?)",
		login, passwordHash, email,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrConflict
		}
		log.Printf("[Accounts] Create failed for %s: %v", login, err)
		return err
	}
	return nil
}

// Update overwrites only the supplied fields. Nil fields never reach
// the SET clause, so unsupplied values are preserved.
func (r *Accounts) Update(ctx context.Context, login string, u AccountUpdate) error {
	var sets []string
	var args []any

	if u.PasswordHash != nil {
		sets = append(sets, "password = ?")
		args = append(args, *u.PasswordHash)
	}
	if u.AccessLevel != nil {
		sets = append(sets, "accessLevel = ?")
		args = append(args, *u.AccessLevel)
	}
	if u.LastServerID != nil {
		sets = append(sets, "lastServerId = ?")
		args = append(args, *u.LastServerID)
	}
	if u.BanExpire != nil {
		sets = append(sets, "ban_expire = ?")
		args = append(args, *u.BanExpire)
	}
	if u.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *u.Email)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, login)
	_, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE login = ?",
		args...,
	)
	if err != nil {
		log.Printf("[Accounts] Update failed for %s: %v", login, err)
	}
	return err
}

// Delete removes the account row and its login history in one
// transaction. Returns ErrNotFound when no account row was removed.
func (r *Accounts) Delete(ctx context.Context, login string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("[Accounts] Delete begin failed for %s: %v", login, err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM account_log WHERE login = ?", login); err != nil {
		log.Printf("[Accounts] Delete history failed for %s: %v", login, err)
		return err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE login = ?", login)
	if err != nil {
		log.Printf("[Accounts] Delete account failed for %s: %v", login, err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Load fetches one account by login, enriched with derived fields.
// Returns ErrNotFound when the login does not exist.
func (r *Accounts) Load(ctx context.Context, login string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, accountSelect+"WHERE login = ?", login)
	account, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("[Accounts] Load failed for %s: %v", login, err)
		return nil, err
	}
	enriched := models.EnrichAccount(account, time.Now())
	return &enriched, nil
}

// List returns one page of accounts matching the filter set.
// The count query and the data query share one predicate set.
func (r *Accounts) List(ctx context.Context, f AccountFilters, opts query.PageOptions) ([]models.Account, query.Pagination, error) {
	now := time.Now()
	b := f.build(now)
	where := b.Where()

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts "+where, b.Args()...).Scan(&total)
	if err != nil {
		log.Printf("[Accounts] List count failed: %v", err)
		return nil, query.Pagination{}, err
	}

	dataQuery := accountSelect + where + " " + opts.OrderClause() + " LIMIT ? OFFSET ?"
	args := append(append([]any{}, b.Args()...), opts.Limit, opts.Offset())

	rows, err := r.db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		log.Printf("[Accounts] List query failed: %v", err)
		return nil, query.Pagination{}, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows.Scan)
		if err != nil {
			log.Printf("[Accounts] List scan failed: %v", err)
			return nil, query.Pagination{}, err
		}
		accounts = append(accounts, models.EnrichAccount(account, now))
	}
	if err := rows.Err(); err != nil {
		log.Printf("[Accounts] List rows failed: %v", err)
		return nil, query.Pagination{}, err
	}

	return accounts, query.NewPagination(total, opts), nil
}

// LoginHistory returns one page of an account's login events,
// newest first
func (r *Accounts) LoginHistory(ctx context.Context, login string, opts query.PageOptions) ([]models.LoginHistoryEntry, query.Pagination, error) {
	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account_log WHERE login = ?", login).Scan(&total)
	if err != nil {
		log.Printf("[Accounts] History count failed for %s: %v", login, err)
		return nil, query.Pagination{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT login, time, lastServerId, ip, hwid FROM account_log WHERE login = ? ORDER BY time DESC LIMIT ? OFFSET ?",
		login, opts.Limit, opts.Offset(),
	)
	if err != nil {
		log.Printf("[Accounts] History query failed for %s: %v", login, err)
		return nil, query.Pagination{}, err
	}
	defer rows.Close()

	entries := []models.LoginHistoryEntry{}
	for rows.Next() {
		var e models.LoginHistoryEntry
		if err := rows.Scan(&e.Login, &e.Time, &e.LastServerID, &e.IP, &e.HWID); err != nil {
			log.Printf("[Accounts] History scan failed for %s: %v", login, err)
			return nil, query.Pagination{}, err
		}
		entries = append(entries, models.EnrichLoginHistoryEntry(e))
	}
	if err := rows.Err(); err != nil {
		log.Printf("[Accounts] History rows failed for %s: %v", login, err)
		return nil, query.Pagination{}, err
	}

	return entries, query.NewPagination(total, opts), nil
}

// scanAccount reads one account row in accountSelect column order
func scanAccount(scan func(...any) error) (models.Account, error) {
	var a models.Account
	var lastActive sql.NullInt64
	var lastIP, lastHWID, email sql.NullString

	err := scan(
		&a.Login,
		&a.PasswordHash,
		&a.AccessLevel,
		&lastActive,
		&lastIP,
		&lastHWID,
		&a.LastServerID,
		&a.BanExpire,
		&email,
	)
	if err != nil {
		return a, err
	}

	if lastActive.Valid {
		a.LastActive = &lastActive.Int64
	}
	a.LastIP = lastIP.String
	a.LastHWID = lastHWID.String
	if email.Valid {
		a.Email = &email.String
	}
	return a, nil
}
