package models

import "time"

type User struct {
	ID         string     `gorm:"primaryKey;column:id" json:"id"`
	EmployeeID string     `gorm:"column:employee_id" json:"employee_id"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	FirstName  string     `gorm:"column:first_name" json:"first_name"`
	LastName   string     `gorm:"column:last_name" json:"last_name"`
	NickName   *string    `gorm:"column:nick_name" json:"nick_name,omitempty"`
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName formats the user as "ชื่อ(ชื่อเล่น)" the way the dashboards
// render employees.
func (u *User) DisplayName() string {
	if u.FirstName == "" {
		return "-"
	}
	if u.NickName != nil && *u.NickName != "" {
		return u.FirstName + "(" + *u.NickName + ")"
	}
	return u.FirstName
}
