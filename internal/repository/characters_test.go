package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omega-realm/admin-api/internal/database"
	"github.com/omega-realm/admin-api/internal/query"
)

var characterRowColumns = []string{
	"obj_Id", "char_name", "account_name", "x", "y", "z", "base_class_id",
	"level", "clanid", "pvpkills", "pkkills", "karma", "online",
	"onlinetime", "createtime", "deletetime", "lastAccess", "sex",
}

func newCharactersMock(t *testing.T) (*Characters, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCharacters(&database.DB{DB: db}), mock
}

func liveCharacterRow(rows *sqlmock.Rows, objID int, name string) *sqlmock.Rows {
	return rows.AddRow(objID, name, "tester01", 100, 200, -50, 5,
		40, 0, 12, 1, 0, 1, int64(7200), int64(1650000000), int64(0), int64(1699999999), 1)
}

func characterPage() query.PageOptions {
	return query.ParsePageOptions("", "", "", "", CharacterSortFields, CharacterDefaultSort)
}

func TestCharactersListDefaultExcludesDeleted(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM characters WHERE deletetime = \?`).
		WithArgs(0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`FROM characters\s+WHERE deletetime = \? ORDER BY char_name ASC LIMIT \? OFFSET \?`).
		WithArgs(0, 10, 0).
		WillReturnRows(liveCharacterRow(sqlmock.NewRows(characterRowColumns), 268435456, "Valdor"))

	characters, pagination, err := repo.List(context.Background(), CharacterFilters{}, characterPage())
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.Equal(t, "Valdor", characters[0].CharName)
	assert.True(t, characters[0].IsOnline)
	assert.False(t, characters[0].IsDeleted)
	assert.Equal(t, "male", characters[0].Gender)
	assert.Equal(t, int64(2), characters[0].OnlineTimeHours)
	assert.Equal(t, 1, pagination.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharactersListDeletedOnly(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM characters WHERE deletetime > \?`).
		WithArgs(0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`FROM characters\s+WHERE deletetime > \?`).
		WithArgs(0, 10, 0).
		WillReturnRows(sqlmock.NewRows(characterRowColumns))

	characters, _, err := repo.List(context.Background(), CharacterFilters{DeletedOnly: true}, characterPage())
	require.NoError(t, err)
	assert.Empty(t, characters)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharactersListFilterSet(t *testing.T) {
	repo, mock := newCharactersMock(t)

	minLevel, maxLevel, clanID := 20, 60, 42
	wantWhere := `WHERE char_name LIKE \? AND clanid = \? AND online = \? AND level >= \? AND level <= \? AND deletetime = \?`

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM characters `+wantWhere).
		WithArgs("%Val%", 42, 1, 20, 60, 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`FROM characters\s+`+wantWhere).
		WithArgs("%Val%", 42, 1, 20, 60, 0, 10, 0).
		WillReturnRows(sqlmock.NewRows(characterRowColumns))

	_, _, err := repo.List(context.Background(), CharacterFilters{
		CharName: "Val",
		ClanID:   &clanID,
		Online:   true,
		MinLevel: &minLevel,
		MaxLevel: &maxLevel,
	}, characterPage())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharactersLoadByIDExcludesDeleted(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`FROM characters\s+WHERE obj_Id = \? AND deletetime = 0`).
		WithArgs(268435456).
		WillReturnRows(sqlmock.NewRows(characterRowColumns))

	character, err := repo.LoadByID(context.Background(), 268435456)
	assert.Nil(t, character)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCharactersLoadByName(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`FROM characters\s+WHERE char_name = \?`).
		WithArgs("Valdor").
		WillReturnRows(liveCharacterRow(sqlmock.NewRows(characterRowColumns), 268435456, "Valdor"))

	character, err := repo.LoadByName(context.Background(), "Valdor")
	require.NoError(t, err)
	assert.Equal(t, 268435456, character.ObjID)
	assert.NotNil(t, character.CreateDate)
	assert.Nil(t, character.DeleteDate)
}

func TestCharactersListByAccount(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM characters WHERE account_name = \? AND deletetime = \?`).
		WithArgs("tester01", 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`FROM characters\s+WHERE account_name = \? AND deletetime = \?`).
		WithArgs("tester01", 0, 10, 0).
		WillReturnRows(liveCharacterRow(sqlmock.NewRows(characterRowColumns), 268435456, "Valdor"))

	characters, _, err := repo.ListByAccount(context.Background(), "tester01", false, characterPage())
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharactersListByAccountIncludesDeleted(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM characters WHERE account_name = \?`).
		WithArgs("tester01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery(`FROM characters\s+WHERE account_name = \?`).
		WithArgs("tester01", 10, 0).
		WillReturnRows(sqlmock.NewRows(characterRowColumns))

	_, pagination, err := repo.ListByAccount(context.Background(), "tester01", true, characterPage())
	require.NoError(t, err)
	assert.Equal(t, 2, pagination.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharactersGetTotalStats(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\),`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "active", "deleted", "online"}).
			AddRow(1200, 1100, 100, 37))

	stats, err := repo.GetTotalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200, stats.TotalCharacters)
	assert.Equal(t, 1100, stats.ActiveCharacters)
	assert.Equal(t, 100, stats.DeletedCharacters)
	assert.Equal(t, 37, stats.OnlineNow)
}

func TestCharactersByClassOrderedByCount(t *testing.T) {
	repo, mock := newCharactersMock(t)

	mock.ExpectQuery(`SELECT base_class_id, COUNT\(\*\)\s+FROM characters\s+WHERE deletetime = 0\s+GROUP BY base_class_id`).
		WillReturnRows(sqlmock.NewRows([]string{"base_class_id", "count"}).
			AddRow(5, 300).
			AddRow(12, 150))

	counts, err := repo.GetCharactersByClass(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 5, counts[0].BaseClassID)
	assert.Equal(t, 300, counts[0].Count)
}
