package domain

// UserRole Model
type UserRole struct {
	UserID    string `gorm:"primaryKey;size:36"` // Foreign key to User, one row per user
	RoleID    int    `gorm:"not null"`           // Coarse permission tier
	SubRoleID int    `gorm:"not null;index"`     // Fine permission tier, keys RoleModule
}

// TableName overrides the table name used by UserRole
func (UserRole) TableName() string {
	return "user_role"
}
