package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User представляє користувача в системі.
type User struct {
	ID       string `gorm:"primaryKey" json:"id"` // UUID
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	// TODO: hash passwords before storing.
	Password string `gorm:"not null" json:"-"`
	// IsAdmin is set out-of-band via the admin CLI.
	IsAdmin bool `gorm:"not null;default:false" json:"is_admin"`
	// TelegramChatID, if non-zero, receives status-change notifications.
	TelegramChatID int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// BeforeCreate — це хук GORM, який викликається перед створенням запису.
// Він генерує новий UUID для користувача, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// CheckPassword перевіряє пароль користувача. The comparison lives here
// so switching to hashed storage touches one function.
func (u *User) CheckPassword(candidate string) bool {
	return u.Password == candidate
}
