package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/omega-realm/admin-api/internal/query"
	"github.com/omega-realm/admin-api/internal/repository"
)

type CharactersHandler struct {
	characters *repository.Characters
}

func NewCharactersHandler(characters *repository.Characters) *CharactersHandler {
	return &CharactersHandler{characters: characters}
}

// List returns one page of characters matching the query filters
func (h *CharactersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := parseCharacterFilters(q)
	opts := query.ParsePageOptions(
		q.Get("page"), q.Get("limit"), q.Get("sortBy"), q.Get("sortOrder"),
		repository.CharacterSortFields, repository.CharacterDefaultSort,
	)

	characters, pagination, err := h.characters.List(r.Context(), filters, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"characters": characters,
		"pagination": pagination,
	})
}

// Get returns one character by object id. Soft-deleted characters are
// not found.
func (h *CharactersHandler) Get(w http.ResponseWriter, r *http.Request) {
	objID, err := strconv.Atoi(r.PathValue("charId"))
	if err != nil {
		writeValidationError(w, "Character id must be numeric")
		return
	}

	character, err := h.characters.LoadByID(r.Context(), objID)
	if err != nil {
		writeRepositoryError(w, err, "Character not found")
		return
	}

	writeJSON(w, http.StatusOK, character)
}

// Exists reports whether a character name is taken
func (h *CharactersHandler) Exists(w http.ResponseWriter, r *http.Request) {
	charName := r.PathValue("charName")

	exists, err := h.characters.Exists(r.Context(), charName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// ListByAccount returns one page of the characters on one account.
// The includDeleted flag keeps its historical spelling.
func (h *CharactersHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountName := r.PathValue("accountName")

	q := r.URL.Query()
	includeDeleted := query.ParseFlag(q.Get("includDeleted"))
	opts := query.ParsePageOptions(
		q.Get("page"), q.Get("limit"), q.Get("sortBy"), q.Get("sortOrder"),
		repository.CharacterSortFields, repository.CharacterDefaultSort,
	)

	characters, pagination, err := h.characters.ListByAccount(r.Context(), accountName, includeDeleted, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"characters": characters,
		"pagination": pagination,
	})
}

// Stats serves the aggregate character statistics selected by the
// type query parameter. Unknown types fall back to total.
func (h *CharactersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var (
		result any
		err    error
	)

	switch r.URL.Query().Get("type") {
	case "online":
		result, err = h.characters.GetOnlineStats(r.Context())
	case "by_class":
		result, err = h.characters.GetCharactersByClass(r.Context())
	case "by_clan":
		result, err = h.characters.GetCharactersByClan(r.Context())
	case "by_level":
		result, err = h.characters.GetCharactersByLevel(r.Context())
	default:
		result, err = h.characters.GetTotalStats(r.Context())
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseCharacterFilters normalizes the raw character list query into a
// typed filter set. Malformed values are dropped rather than erroring.
func parseCharacterFilters(q url.Values) repository.CharacterFilters {
	return repository.CharacterFilters{
		CharName:    q.Get("charName"),
		AccountName: q.Get("accountName"),
		ClanID:      query.OptionalInt(q.Get("clanId")),
		Sex:         query.OptionalInt(q.Get("sex")),
		Online:      query.ParseFlag(q.Get("online")),
		MinLevel:    query.OptionalInt(q.Get("minLevel")),
		MaxLevel:    query.OptionalInt(q.Get("maxLevel")),
		CreatedFrom: query.OptionalTimestamp(q.Get("createdFrom")),
		CreatedTo:   query.OptionalTimestamp(q.Get("createdTo")),
		DeletedOnly: query.ParseFlag(q.Get("deletedOnly")),
	}
}
