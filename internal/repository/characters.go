package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/omega-realm/admin-api/internal/database"
	"github.com/omega-realm/admin-api/internal/models"
	"github.com/omega-realm/admin-api/internal/query"
)

// Columns the character filter set may touch
var characterColumns = []string{
	"char_name", "account_name", "clanid", "sex", "online",
	"level", "createtime", "deletetime",
}

// CharacterSortFields is the sort allow-list for character lists
var CharacterSortFields = []string{
	"char_name", "level", "onlinetime", "pvpkills", "pkkills",
	"createtime", "lastAccess",
}

// CharacterDefaultSort is the fallback sort field for character lists
const CharacterDefaultSort = "char_name"

const characterSelect = `
	SELECT obj_Id, char_name, account_name, x, y, z, base_class_id, level, clanid,
	       pvpkills, pkkills, karma, online, onlinetime, createtime, deletetime, lastAccess, sex
	FROM characters
`

// CharacterFilters is the typed filter set for character lists.
// Zero values mean the filter is absent. DeletedOnly flips the list
// from live characters to soft-deleted ones; exactly one of the two
// deletetime predicates is always present.
type CharacterFilters struct {
	CharName    string
	AccountName string
	ClanID      *int
	Sex         *int
	Online      bool
	MinLevel    *int
	MaxLevel    *int
	CreatedFrom *int64
	CreatedTo   *int64
	DeletedOnly bool
}

func (f CharacterFilters) build() *query.Builder {
	b := query.NewBuilder(characterColumns)
	if f.CharName != "" {
		b.Like("char_name", f.CharName)
	}
	if f.AccountName != "" {
		b.Like("account_name", f.AccountName)
	}
	if f.ClanID != nil {
		b.Equal("clanid", *f.ClanID)
	}
	if f.Sex != nil {
		b.Equal("sex", *f.Sex)
	}
	if f.Online {
		b.Equal("online", 1)
	}
	if f.MinLevel != nil {
		b.AtLeast("level", *f.MinLevel)
	}
	if f.MaxLevel != nil {
		b.AtMost("level", *f.MaxLevel)
	}
	if f.CreatedFrom != nil {
		b.AtLeast("createtime", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		b.AtMost("createtime", *f.CreatedTo)
	}
	if f.DeletedOnly {
		b.GreaterThan("deletetime", 0)
	} else {
		b.Equal("deletetime", 0)
	}
	return b
}

// Characters provides read access to the game database
type Characters struct {
	db *database.DB
}

func NewCharacters(db *database.DB) *Characters {
	return &Characters{db: db}
}

// Exists reports whether a character with the given name exists
func (r *Characters) Exists(ctx context.Context, charName string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM characters WHERE char_name = ?", charName).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		log.Printf("[Characters] Exists query failed for %s: %v", charName, err)
		return false, err
	}
	return true, nil
}

// ExistsByID reports whether a character with the given object id exists
func (r *Characters) ExistsByID(ctx context.Context, objID int) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM characters WHERE obj_Id = ?", objID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		log.Printf("[Characters] ExistsByID query failed for %d: %v", objID, err)
		return false, err
	}
	return true, nil
}

// LoadByName fetches one character by name.
// Returns ErrNotFound when the name does not exist.
func (r *Characters) LoadByName(ctx context.Context, charName string) (*models.Character, error) {
	row := r.db.QueryRowContext(ctx, characterSelect+"WHERE char_name = ?", charName)
	return r.loadOne(row, charName)
}

// LoadByID fetches one character by object id. Soft-deleted characters
// are excluded, matching the list default.
func (r *Characters) LoadByID(ctx context.Context, objID int) (*models.Character, error) {
	row := r.db.QueryRowContext(ctx, characterSelect+"WHERE obj_Id = ? AND deletetime = 0", objID)
	return r.loadOne(row, objID)
}

func (r *Characters) loadOne(row *sql.Row, key any) (*models.Character, error) {
	character, err := scanCharacter(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("[Characters] Load failed for %v: %v", key, err)
		return nil, err
	}
	enriched := models.EnrichCharacter(character)
	return &enriched, nil
}

// List returns one page of characters matching the filter set
func (r *Characters) List(ctx context.Context, f CharacterFilters, opts query.PageOptions) ([]models.Character, query.Pagination, error) {
	return r.list(ctx, f.build(), opts)
}

// ListByAccount returns one page of the characters belonging to one
// account. Soft-deleted characters are excluded unless includeDeleted
// is set.
func (r *Characters) ListByAccount(ctx context.Context, accountName string, includeDeleted bool, opts query.PageOptions) ([]models.Character, query.Pagination, error) {
	b := query.NewBuilder(characterColumns)
	b.Equal("account_name", accountName)
	if !includeDeleted {
		b.Equal("deletetime", 0)
	}
	return r.list(ctx, b, opts)
}

func (r *Characters) list(ctx context.Context, b *query.Builder, opts query.PageOptions) ([]models.Character, query.Pagination, error) {
	where := b.Where()

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM characters "+where, b.Args()...).Scan(&total)
	if err != nil {
		log.Printf("[Characters] List count failed: %v", err)
		return nil, query.Pagination{}, err
	}

	dataQuery := characterSelect + where + " " + opts.OrderClause() + " LIMIT ? OFFSET ?"
	args := append(append([]any{}, b.Args()...), opts.Limit, opts.Offset())

	rows, err := r.db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		log.Printf("[Characters] List query failed: %v", err)
		return nil, query.Pagination{}, err
	}
	defer rows.Close()

	characters := []models.Character{}
	for rows.Next() {
		character, err := scanCharacter(rows.Scan)
		if err != nil {
			log.Printf("[Characters] List scan failed: %v", err)
			return nil, query.Pagination{}, err
		}
		characters = append(characters, models.EnrichCharacter(character))
	}
	if err := rows.Err(); err != nil {
		log.Printf("[Characters] List rows failed: %v", err)
		return nil, query.Pagination{}, err
	}

	return characters, query.NewPagination(total, opts), nil
}

// TotalStats summarizes the character tables
type TotalStats struct {
	TotalCharacters   int `json:"totalCharacters"`
	ActiveCharacters  int `json:"activeCharacters"`
	DeletedCharacters int `json:"deletedCharacters"`
	OnlineNow         int `json:"onlineNow"`
}

// OnlineStats summarizes currently connected characters
type OnlineStats struct {
	Online             int     `json:"online"`
	AvgOnlineTimeHours float64 `json:"avgOnlineTimeHours"`
}

// ClassCount is one by-class aggregation bucket
type ClassCount struct {
	BaseClassID int `json:"base_class_id"`
	Count       int `json:"count"`
}

// ClanCount is one by-clan aggregation bucket
type ClanCount struct {
	ClanID int `json:"clanid"`
	Count  int `json:"count"`
}

// LevelCount is one by-level aggregation bucket
type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// GetTotalStats returns overall character counts
func (r *Characters) GetTotalStats(ctx context.Context) (*TotalStats, error) {
	var s TotalStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(deletetime = 0), 0),
		       COALESCE(SUM(deletetime > 0), 0),
		       COALESCE(SUM(online = 1 AND deletetime = 0), 0)
		FROM characters`,
	).Scan(&s.TotalCharacters, &s.ActiveCharacters, &s.DeletedCharacters, &s.OnlineNow)
	if err != nil {
		log.Printf("[Characters] Total stats failed: %v", err)
		return nil, err
	}
	return &s, nil
}

// GetOnlineStats returns counts for currently connected characters
func (r *Characters) GetOnlineStats(ctx context.Context) (*OnlineStats, error) {
	var s OnlineStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(onlinetime), 0) / 3600
		FROM characters
		WHERE online = 1 AND deletetime = 0`,
	).Scan(&s.Online, &s.AvgOnlineTimeHours)
	if err != nil {
		log.Printf("[Characters] Online stats failed: %v", err)
		return nil, err
	}
	return &s, nil
}

// GetCharactersByClass returns live character counts per base class
func (r *Characters) GetCharactersByClass(ctx context.Context) ([]ClassCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT base_class_id, COUNT(*)
		FROM characters
		WHERE deletetime = 0
		GROUP BY base_class_id
		ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		log.Printf("[Characters] By-class stats failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	counts := []ClassCount{}
	for rows.Next() {
		var c ClassCount
		if err := rows.Scan(&c.BaseClassID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetCharactersByClan returns live character counts per clan,
// clanless characters excluded
func (r *Characters) GetCharactersByClan(ctx context.Context) ([]ClanCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT clanid, COUNT(*)
		FROM characters
		WHERE deletetime = 0 AND clanid > 0
		GROUP BY clanid
		ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		log.Printf("[Characters] By-clan stats failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	counts := []ClanCount{}
	for rows.Next() {
		var c ClanCount
		if err := rows.Scan(&c.ClanID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetCharactersByLevel returns live character counts per level
func (r *Characters) GetCharactersByLevel(ctx context.Context) ([]LevelCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT level, COUNT(*)
		FROM characters
		WHERE deletetime = 0
		GROUP BY level
		ORDER BY level ASC`,
	)
	if err != nil {
		log.Printf("[Characters] By-level stats failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	counts := []LevelCount{}
	for rows.Next() {
		var c LevelCount
		if err := rows.Scan(&c.Level, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// scanCharacter reads one character row in characterSelect column order
func scanCharacter(scan func(...any) error) (models.Character, error) {
	var c models.Character
	err := scan(
		&c.ObjID,
		&c.CharName,
		&c.AccountName,
		&c.X,
		&c.Y,
		&c.Z,
		&c.BaseClassID,
		&c.Level,
		&c.ClanID,
		&c.PvPKills,
		&c.PKKills,
		&c.Karma,
		&c.Online,
		&c.OnlineTime,
		&c.CreateTime,
		&c.DeleteTime,
		&c.LastAccess,
		&c.Sex,
	)
	return c, err
}
