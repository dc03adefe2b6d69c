package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	//電話番号は任意。重複チェックはusecase側（空文字を許すためunique indexにしない）
	PhoneNumber  string `gorm:"type:varchar(30);index" json:"phone_number"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FullName     string `gorm:"type:varchar(255)" json:"full_name"`

	//配送先（この仕組みでは住所は文字列1本で持つ）
	Address string `gorm:"type:varchar(500)" json:"address"`

	Role         Role `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	TokenVersion int  `gorm:"not null;default:0" json:"token_version"`
	IsActive     bool `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
