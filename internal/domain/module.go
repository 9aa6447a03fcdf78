package domain

// Module Model
type Module struct {
	ID         uint   `gorm:"primaryKey"`                    // Primary key
	ModuleName string `gorm:"size:100;not null;uniqueIndex"` // Name returned to clients after login
}

// TableName overrides the table name used by Module
func (Module) TableName() string {
	return "modules"
}

// RoleModule Model maps a sub-role to a module it may access
type RoleModule struct {
	SubRoleID int  `gorm:"primaryKey;autoIncrement:false"` // Sub-role granted the module
	ModuleID  uint `gorm:"primaryKey;autoIncrement:false"` // Foreign key to Module
}

// TableName overrides the table name used by RoleModule
func (RoleModule) TableName() string {
	return "role_module"
}
