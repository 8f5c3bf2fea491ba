package model

type User struct {
	UserID       uint64  `gorm:"column:user_id;primaryKey;autoIncrement"`
	Username     string  `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email        string  `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string  `gorm:"column:password_hash;type:text;not null"`
	Role         string  `gorm:"column:role;type:text;not null;default:user"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null"`
	LastLoginAt  *string `gorm:"column:last_login_at;type:text"`
}

func (User) TableName() string {
	return "users"
}
