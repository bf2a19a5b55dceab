package model

import (
	"net/url"
	"strings"
	"time"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses в порядке отображения. Переходы между ними не ограничиваются на клиенте.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

func (s TicketStatus) Valid() bool {
	for _, v := range TicketStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TicketType string

const (
	TicketTypeFAQ  TicketType = "FAQ"
	TicketTypeChat TicketType = "CHAT"
)

// UserSummary: автор обращения, как его отдаёт backend.
type UserSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email,omitempty"`
	Nickname  *string `json:"nickname,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Contact: email, а если его нет, никнейм.
func (u UserSummary) Contact() string {
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	if u.Nickname != nil {
		return *u.Nickname
	}
	return ""
}

// Ticket: обращение в поддержку. AdminReply/RepliedAt заполняются только у FAQ.
type Ticket struct {
	ID         string       `json:"id"`
	Type       TicketType   `json:"type"`
	Title      string       `json:"title"`
	Body       string       `json:"body"`
	Status     TicketStatus `json:"status"`
	AdminReply *string      `json:"adminReply,omitempty"`
	RepliedAt  *time.Time   `json:"repliedAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	User       UserSummary  `json:"user"`
}

func (t Ticket) GetID() string { return t.ID }

func (t Ticket) IsChat() bool { return t.Type == TicketTypeChat }

// Message: строка переписки CHAT-тикета. Не изменяется после создания.
type Message struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m Message) GetID() string { return m.ID }

// ResolveImageURL возвращает абсолютный URL картинки. Относительные пути
// достраиваются от origin API; URL со схемой или хостом не меняются.
func (m Message) ResolveImageURL(origin string) string {
	if m.ImageURL == nil || *m.ImageURL == "" {
		return ""
	}
	u := *m.ImageURL
	if strings.HasPrefix(u, "//") {
		return u
	}
	if parsed, err := url.Parse(u); err == nil && parsed.Scheme != "" {
		return u
	}
	return strings.TrimSuffix(origin, "/") + "/" + strings.TrimPrefix(u, "/")
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusDeleted   UserStatus = "DELETED"
)

type UserCounts struct {
	CheckIns  int `json:"checkIns"`
	Reviews   int `json:"reviews"`
	Bookmarks int `json:"bookmarks"`
}

// AdminUser: пользователь в админском списке (users + credits).
type AdminUser struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             *string    `json:"email,omitempty"`
	Nickname          *string    `json:"nickname,omitempty"`
	AvatarURL         *string    `json:"avatarUrl,omitempty"`
	IsAdmin           bool       `json:"isAdmin"`
	Status            UserStatus `json:"status"`
	IsProfileComplete bool       `json:"isProfileComplete"`
	Provider          string     `json:"provider"`
	Credits           int64      `json:"credits"`
	SuspendReason     *string    `json:"suspendReason,omitempty"`
	SuspendedUntil    *time.Time `json:"suspendedUntil,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	Count             UserCounts `json:"_count"`
}

func (u AdminUser) GetID() string { return u.ID }

// Matches: q входит в имя, email или никнейм.
func (u AdminUser) Matches(q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(u.Name, q) {
		return true
	}
	if u.Email != nil && strings.Contains(*u.Email, q) {
		return true
	}
	return u.Nickname != nil && strings.Contains(*u.Nickname, q)
}

// CreditBalance: ответ backend на изменение баланса.
type CreditBalance struct {
	UserID  string `json:"userId"`
	Credits int64  `json:"credits"`
}

// Admin: текущий администратор (GET /auth/me).
type Admin struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}
