// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"account_service/internal/db"
	"account_service/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated SQLite database that lives for the duration of the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "accounts.db")
	gdb, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// SeedModules grants each named module to subRoleID.
func SeedModules(t testing.TB, gdb *gorm.DB, subRoleID int, names ...string) {
	t.Helper()

	for _, name := range names {
		m := domain.Module{ModuleName: name}
		require.NoError(t, gdb.Where(domain.Module{ModuleName: name}).FirstOrCreate(&m).Error)
		require.NoError(t, gdb.Create(&domain.RoleModule{SubRoleID: subRoleID, ModuleID: m.ID}).Error)
	}
}

// CountRows returns the number of rows in the table of model matching the optional condition.
func CountRows(t testing.TB, gdb *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	tx := gdb.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	require.NoError(t, tx.Count(&n).Error)
	return n
}
