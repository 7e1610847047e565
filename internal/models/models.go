package models

import "time"

// Account represents a game account row from the login database.
// The trailing fields are derived at response time by EnrichAccount
// and are never stored.
type Account struct {
	Login        string  `json:"login"`
	PasswordHash string  `json:"-"`
	AccessLevel  int     `json:"accessLevel"`
	LastActive   *int64  `json:"lastactive"`
	LastIP       string  `json:"lastIP"`
	LastHWID     string  `json:"lastHwid"`
	LastServerID int     `json:"lastServerId"`
	BanExpire    int64   `json:"banExpire"`
	Email        *string `json:"email"`

	IsBanned       bool    `json:"isBanned"`
	BanExpireDate  *string `json:"banExpireDate"`
	LastActiveDate *string `json:"lastactiveDate"`
}

// Character represents a player character row from the game database.
// Characters are written by the game server; this API only reads them.
type Character struct {
	ObjID       int    `json:"obj_Id"`
	CharName    string `json:"char_name"`
	AccountName string `json:"account_name"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
	BaseClassID int    `json:"base_class_id"`
	Level       int    `json:"level"`
	ClanID      int    `json:"clanid"`
	PvPKills    int    `json:"pvpkills"`
	PKKills     int    `json:"pkkills"`
	Karma       int    `json:"karma"`
	Online      int    `json:"online"`
	OnlineTime  int64  `json:"onlinetime"`
	CreateTime  int64  `json:"createtime"`
	DeleteTime  int64  `json:"deletetime"`
	LastAccess  int64  `json:"lastAccess"`
	Sex         int    `json:"sex"`

	CreateDate      *string `json:"createDate"`
	DeleteDate      *string `json:"deleteDate"`
	LastAccessDate  *string `json:"lastAccessDate"`
	IsOnline        bool    `json:"isOnline"`
	IsDeleted       bool    `json:"isDeleted"`
	Gender          string  `json:"gender"`
	OnlineTimeHours int64   `json:"onlineTimeHours"`
}

// LoginHistoryEntry is one append-only login event for an account
type LoginHistoryEntry struct {
	Login        string  `json:"login"`
	Time         int64   `json:"time"`
	LastServerID int     `json:"lastServerId"`
	IP           string  `json:"ip"`
	HWID         string  `json:"hwid"`
	Date         *string `json:"date"`
}

// isoDate renders a Unix-seconds timestamp as RFC3339 UTC.
// Zero and negative sentinels map to nil, never to an epoch date.
func isoDate(ts int64) *string {
	if ts <= 0 {
		return nil
	}
	s := time.Unix(ts, 0).UTC().Format(time.RFC3339)
	return &s
}

// EnrichAccount returns a copy of the account with derived fields filled in
func EnrichAccount(a Account, now time.Time) Account {
	a.IsBanned = a.BanExpire > now.Unix()
	a.BanExpireDate = isoDate(a.BanExpire)
	if a.LastActive != nil {
		a.LastActiveDate = isoDate(*a.LastActive)
	}
	return a
}

// EnrichCharacter returns a copy of the character with derived fields filled in
func EnrichCharacter(c Character) Character {
	c.CreateDate = isoDate(c.CreateTime)
	c.DeleteDate = isoDate(c.DeleteTime)
	c.LastAccessDate = isoDate(c.LastAccess)
	c.IsOnline = c.Online == 1
	c.IsDeleted = c.DeleteTime > 0
	if c.Sex == 1 {
		c.Gender = "male"
	} else {
		c.Gender = "female"
	}
	c.OnlineTimeHours = c.OnlineTime / 3600
	return c
}

// EnrichLoginHistoryEntry returns a copy of the entry with its derived date
func EnrichLoginHistoryEntry(e LoginHistoryEntry) LoginHistoryEntry {
	e.Date = isoDate(e.Time)
	return e
}
