package models

// User represents a registered account. There is exactly one kind of
// principal in the system; no roles or administrators exist.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	EmailAddress string `json:"emailAddress" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	UserName     string `json:"userName" gorm:"type:varchar(100)" validate:"required,max=100"`
	PasswordHash string `json:"-" gorm:"type:varchar(255)"` // Never serialized
}
