package migrate

import (
	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/pkg/db/models"
)

// AutoMigrate creates or alters tables from the gorm models. It backs sqlite
// databases (dev and tests), which cannot run the Postgres SQL migrations.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(models.All()...)
}
