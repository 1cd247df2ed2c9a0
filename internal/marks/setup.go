package marks

import (
	"log"

	"github.com/ClassTrack/CT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "classtrack"); err != nil {
		log.Fatal("Failed to ensure schema classtrack: ", err)
	}

	if err := db.DB.AutoMigrate(&Mark{}); err != nil {
		log.Fatal("Failed to auto-migrate mark table", err)
	}
}
