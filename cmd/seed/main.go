package main

import (
	"log"
	"os"
	"time"

	"medivault-be/internal/constant"
	"medivault-be/internal/model"
	"medivault-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
)

// Seeds a demo corpus for one user so the search dispatcher can be
// exercised without going through upload and analysis first.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	userIdStr := os.Getenv("SEED_USER_ID")
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		color.Red("Error: SEED_USER_ID must be a valid UUID")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Seeding demo documents for user %s...", userId)

	docs := []model.Document{
		{
			Id:            uuid.New(),
			UserId:        userId,
			DisplayName:   "Annual Blood Panel 2025",
			Filename:      "blood_panel_2025.pdf",
			Status:        constant.DocumentStatusComplete,
			SearchSummary: "Complete blood count and lipid panel from the annual checkup. Cholesterol slightly elevated, all other markers within range.",
			StructuredData: datatypes.JSONMap{
				"total_cholesterol": "212 mg/dL",
				"hdl":               "58 mg/dL",
				"ldl":               "131 mg/dL",
				"glucose":           "92 mg/dL",
			},
			CreatedAt: time.Now().AddDate(0, -2, 0),
		},
		{
			Id:            uuid.New(),
			UserId:        userId,
			DisplayName:   "Lisinopril Prescription",
			Filename:      "rx_lisinopril.pdf",
			Status:        constant.DocumentStatusComplete,
			SearchSummary: "Prescription for lisinopril 10mg once daily for blood pressure management, 90 day supply with two refills.",
			StructuredData: datatypes.JSONMap{
				"medication": "Lisinopril",
				"dose":       "10mg daily",
				"refills":    2,
			},
			CreatedAt: time.Now().AddDate(0, -1, 0),
		},
		{
			Id:            uuid.New(),
			UserId:        userId,
			DisplayName:   "Chest X-Ray Report",
			Filename:      "xray_chest_031525.pdf",
			Status:        constant.DocumentStatusReview,
			SearchSummary: "Chest radiograph, two views. No acute cardiopulmonary abnormality identified.",
			CreatedAt:     time.Now().AddDate(0, 0, -10),
		},
	}

	created := 0
	for _, doc := range docs {
		if err := db.Create(&doc).Error; err != nil {
			color.Yellow("Warn: failed to insert %q: %v", doc.DisplayName, err)
			continue
		}
		color.Green("  + %s (%s)", doc.DisplayName, doc.Status)
		created++
	}

	color.Cyan("Done: %d/%d documents seeded.", created, len(docs))
}
