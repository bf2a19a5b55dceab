package model

import (
	"strings"
	"time"
)

// Post: пост сообщества в админском списке.
type Post struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	IsHidden  bool        `json:"isHidden"`
	IsPinned  bool        `json:"isPinned"`
	CreatedAt time.Time   `json:"createdAt"`
	User      UserSummary `json:"user"`
}

func (p Post) GetID() string { return p.ID }

// Matches: q входит в заголовок, имя или никнейм автора.
func (p Post) Matches(q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(p.Title, q) || strings.Contains(p.User.Name, q) {
		return true
	}
	return p.User.Nickname != nil && strings.Contains(*p.User.Nickname, q)
}

// PostRef: пост, на который пожаловались.
type PostRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	IsHidden bool   `json:"isHidden"`
}

// PostReport: жалоба на пост.
type PostReport struct {
	ID         string      `json:"id"`
	Reason     string      `json:"reason"`
	Detail     *string     `json:"detail,omitempty"`
	IsResolved bool        `json:"isResolved"`
	CreatedAt  time.Time   `json:"createdAt"`
	User       UserSummary `json:"user"`
	Post       PostRef     `json:"post"`
}

func (r PostReport) GetID() string { return r.ID }

// UserReport: жалоба одного пользователя на другого.
type UserReport struct {
	ID         string      `json:"id"`
	Reason     string      `json:"reason"`
	Detail     *string     `json:"detail,omitempty"`
	IsResolved bool        `json:"isResolved"`
	CreatedAt  time.Time   `json:"createdAt"`
	Reporter   UserSummary `json:"reporter"`
	Reported   UserSummary `json:"reported"`
}

func (r UserReport) GetID() string { return r.ID }

type PlaceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Review: отзыв о месте.
type Review struct {
	ID        string      `json:"id"`
	Body      string      `json:"body"`
	Rating    int         `json:"rating"`
	CreatedAt time.Time   `json:"createdAt"`
	User      UserSummary `json:"user"`
	Place     PlaceRef    `json:"place"`
}

func (r Review) GetID() string { return r.ID }

// CheckIn: отметка пользователя в месте.
type CheckIn struct {
	ID        string      `json:"id"`
	Note      *string     `json:"note,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	User      UserSummary `json:"user"`
	Place     PlaceRef    `json:"place"`
}

func (c CheckIn) GetID() string { return c.ID }

// Place: место в каталоге; неактивные места скрыты от пользователей.
type Place struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Place) GetID() string { return p.ID }

// Matches: q входит в название или адрес.
func (p Place) Matches(q string) bool {
	return q == "" || strings.Contains(p.Name, q) || strings.Contains(p.Address, q)
}
