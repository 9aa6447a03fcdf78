package domain

// User Model
type User struct {
	ID       string    `gorm:"primaryKey;size:36"`              // Server generated UUID, never mutated
	Email    *string   `gorm:"size:191;uniqueIndex"`            // Unique email, NULL for phone accounts
	Phone    *string   `gorm:"size:32;uniqueIndex"`             // Unique phone, NULL for email accounts
	Password string    `gorm:"size:255;not null"`               // Bcrypt hash, never the cleartext
	Role     *UserRole `gorm:"foreignKey:UserID;references:ID"` // Role assignment, one per user
}

// TableName overrides the table name used by User
func (User) TableName() string {
	return "users"
}
