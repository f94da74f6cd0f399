package main

import (
	"fmt"
	"os"

	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/pkg/database"
	"github.com/dared22/mealplanner/internal/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	if err := config.InitConfig(); err != nil {
		fmt.Printf("Failed to initialize config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Logger.Sync()

	logger.Info("Starting database migration")

	if err := database.InitDatabase(); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	db := database.GetDB()

	logger.Info("Running auto-migration...")
	if err := db.AutoMigrate(
		&model.User{},
		&model.AIAPI{},
		&model.Recipe{},
		&model.Rating{},
		&model.WeeklyPlan{},
		&model.UserBodyData{},
		&model.FitnessGoal{},
	); err != nil {
		logger.Fatal("Failed to auto-migrate schema", zap.Error(err))
	}

	logger.Info("Database migration completed")
}
