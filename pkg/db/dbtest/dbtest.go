// Package dbtest opens throwaway sqlite databases with the full schema for
// repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	"github.com/kitchenequip/equipment-backend/pkg/migrate"
	"github.com/kitchenequip/equipment-backend/pkg/security"
)

var seq atomic.Int64

// Open returns a client over a private in-memory sqlite database. The pool is
// pinned to one connection so the database lives as long as the test.
func Open(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.AutoMigrate(conn); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db.NewFromConn(conn)
}

// DefaultPassword is the password given to users created by CreateUser.
const DefaultPassword = "Passw0rd!"

// CreateUser inserts a live user with DefaultPassword.
func CreateUser(t testing.TB, client *db.Client, userName string, userType enums.UserType) *models.User {
	t.Helper()

	hash, salt, err := security.HashNew(DefaultPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		FirstName:    strings.ToUpper(userName[:1]) + userName[1:],
		LastName:     "Tester",
		EmailAddress: userName + "@example.com",
		UserName:     userName,
		UserType:     userType,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", userName, err)
	}
	return user
}

// CreateSite inserts a live, active site for owner.
func CreateSite(t testing.TB, client *db.Client, owner *models.User, code, name string) *models.Site {
	t.Helper()

	site := &models.Site{UserID: owner.ID, Code: code, Name: name, Active: true, CreatedBy: &owner.ID}
	if err := client.DB().Create(site).Error; err != nil {
		t.Fatalf("create site %s: %v", code, err)
	}
	return site
}

// CreateEquipment inserts live equipment for owner, optionally on site.
func CreateEquipment(t testing.TB, client *db.Client, owner *models.User, serial string, site *models.Site) *models.Equipment {
	t.Helper()

	equipment := &models.Equipment{
		UserID:       owner.ID,
		SerialNumber: serial,
		Condition:    enums.EquipmentConditionWorking,
		CreatedBy:    &owner.ID,
	}
	if site != nil {
		equipment.SiteID = &site.ID
	}
	if err := client.DB().Create(equipment).Error; err != nil {
		t.Fatalf("create equipment %s: %v", serial, err)
	}
	return equipment
}

// SoftDelete marks row deleted through gorm's soft-delete support.
func SoftDelete(t testing.TB, client *db.Client, row any) {
	t.Helper()
	if err := client.DB().Delete(row).Error; err != nil {
		t.Fatalf("soft delete %T: %v", row, err)
	}
}

// History returns every history row ordered by id.
func History(t testing.TB, client *db.Client) []models.SiteEquipmentHistory {
	t.Helper()
	var rows []models.SiteEquipmentHistory
	if err := client.DB().Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	return rows
}
