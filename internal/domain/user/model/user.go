package model

import "time"

const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// Role 角色
type Role struct {
	RoleID   uint   `gorm:"column:role_id;primaryKey" json:"role_id"`
	RoleName string `gorm:"column:role_name;uniqueIndex" json:"role_name"`
}

func (Role) TableName() string { return "roles" }

// User 用户模型
type User struct {
	UserID           uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	FirstName        string    `gorm:"column:first_name" json:"first_name"`
	LastName         string    `gorm:"column:last_name" json:"last_name"`
	Email            string    `gorm:"column:email;uniqueIndex" json:"email"`
	Phone            string    `gorm:"column:phone" json:"phone"`
	PasswordHash     string    `gorm:"column:password_hash" json:"-"` // 密码不返回给前端
	Status           string    `gorm:"column:status;default:active" json:"status"`
	RoleID           uint      `gorm:"column:role_id" json:"role_id"`
	Role             Role      `gorm:"foreignKey:RoleID;references:RoleID" json:"role"`
	RegistrationDate time.Time `gorm:"column:registration_date;autoCreateTime" json:"registration_date"`
}

func (User) TableName() string { return "users" }

func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}
