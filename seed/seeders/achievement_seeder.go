package seeders

import (
	"encoding/json"
	"log"
	"time"

	"github.com/famquest/famquest_api/model"
	"gorm.io/gorm"
)

// AchievementSeeder handles seeding the achievement catalog
type AchievementSeeder struct {
	db *gorm.DB
}

// NewAchievementSeeder creates a new achievement seeder
func NewAchievementSeeder(db *gorm.DB) *AchievementSeeder {
	return &AchievementSeeder{db: db}
}

// SeedAchievements seeds the database with the default achievement catalog
func (s *AchievementSeeder) SeedAchievements() error {
	achievements := s.getAchievementCatalog()

	for _, achievement := range achievements {
		// Check if achievement already exists
		var existing model.AchievementDefinition
		if err := s.db.Where("id = ?", achievement.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&achievement).Error; err != nil {
					log.Printf("Error creating achievement %s: %v", achievement.Name, err)
					return err
				}
				log.Printf("Created achievement: %s", achievement.Name)
			} else {
				log.Printf("Error checking achievement %s: %v", achievement.Name, err)
				return err
			}
		} else {
			log.Printf("Achievement %s already exists, skipping", achievement.Name)
		}
	}

	log.Println("Achievement seeding completed successfully")
	return nil
}

// getAchievementCatalog returns the default catalog. Every condition type the
// engine evaluates has at least one entry here.
func (s *AchievementSeeder) getAchievementCatalog() []model.AchievementDefinition {
	now := time.Now()
	eight := 8

	achievements := []model.AchievementDefinition{
		// Accumulation: total task counts
		{
			ID:            "ach_first_task",
			Name:          "First Steps",
			Description:   "Complete your very first task",
			Icon:          "/assets/badges/first_task.png",
			Dimension:     model.DimensionAccumulation,
			Level:         model.LevelBronze,
			ConditionType: model.ConditionTotalTasks,
			Requirement:   1,
			PointsReward:  10,
			HonorPoints:   5,
			IsActive:      true,
			Order:         1,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "ach_task_10",
			Name:          "Getting Things Done",
			Description:   "Complete 10 tasks",
			Icon:          "/assets/badges/task_10.png",
			Dimension:     model.DimensionAccumulation,
			Level:         model.LevelBronze,
			ConditionType: model.ConditionTotalTasks,
			Requirement:   10,
			PointsReward:  25,
			HonorPoints:   10,
			IsActive:      true,
			Order:         2,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "ach_task_50",
			Name:          "Reliable Helper",
			Description:   "Complete 50 tasks",
			Icon:          "/assets/badges/task_50.png",
			Dimension:     model.DimensionAccumulation,
			Level:         model.LevelSilver,
			ConditionType: model.ConditionTotalTasks,
			Requirement:   50,
			PointsReward:  100,
			HonorPoints:   30,
			IsActive:      true,
			Order:         3,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "ach_task_200",
			Name:          "Household Hero",
			Description:   "Complete 200 tasks",
			Icon:          "/assets/badges/task_200.png",
			Dimension:     model.DimensionAccumulation,
			Level:         model.LevelGold,
			ConditionType: model.ConditionTotalTasks,
			Requirement:   200,
			PointsReward:  300,
			HonorPoints:   100,
			Privileges:    jsonArray([]string{"pick_weekend_movie"}),
			IsActive:      true,
			Order:         4,
			CreatedAt:     now,
			UpdatedAt:     now,
		},

		// Accumulation: total points
		{
			ID:            "ach_points_500",
			Name:          "Point Collector",
			Description:   "Earn 500 points from completed tasks",
			Icon:          "/assets/badges/points_500.png",
			Dimension:     model.DimensionAccumulation,
			Level:         model.LevelSilver,
			ConditionType: model.ConditionTotalPoints,
			Requirement:   500,
			PointsReward:  50,
			HonorPoints:   20,
			IsActive:      true,
			Order:         5,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "ach_points_2000",
			Name:          "Point Tycoon",
			Description:   "Earn 2000 points from completed tasks",
			Icon:          "/assets/badges/points_2000.png",
			Dimension:     model.DimensionAccumulation,
			Level:         model.LevelGold,
			ConditionType: model.ConditionTotalPoints,
			Requirement:   2000,
			PointsReward:  200,
			HonorPoints:   60,
			IsActive:      true,
			Order:         6,
			CreatedAt:     now,
			UpdatedAt:     now,
		},

		// Accumulation: category counters
		{
			ID:                "ach_kitchen_20",
			Name:              "Kitchen Apprentice",
			Description:       "Complete 20 kitchen tasks",
			Icon:              "/assets/badges/kitchen_20.png",
			Dimension:         model.DimensionAccumulation,
			Category:          "kitchen",
			Level:             model.LevelSilver,
			ConditionType:     model.ConditionCategoryTasks,
			Requirement:       20,
			RequirementDetail: jsonDetail(model.RequirementDetail{Category: "kitchen"}),
			PointsReward:      75,
			HonorPoints:       25,
			IsActive:          true,
			Order:             7,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:                "ach_pets_30",
			Name:              "Best Friend of Beasts",
			Description:       "Complete 30 pet care tasks",
			Icon:              "/assets/badges/pets_30.png",
			Dimension:         model.DimensionAccumulation,
			Category:          "pets",
			Level:             model.LevelSilver,
			ConditionType:     model.ConditionCategoryTasks,
			Requirement:       30,
			RequirementDetail: jsonDetail(model.RequirementDetail{Category: "pets"}),
			PointsReward:      75,
			HonorPoints:       25,
			IsActive:          true,
			Order:             8,
			CreatedAt:         now,
			UpdatedAt:         now,
		},

		// Behavior: streaks
		{
			ID:            "ach_streak_3",
			Name:          "Warming Up",
			Description:   "Complete tasks on 3 days in a row",
			Icon:          "/assets/badges/streak_3.png",
			Dimension:     model.DimensionBehavior,
			Level:         model.LevelBronze,
			ConditionType: model.ConditionConsecutiveDays,
			Requirement:   3,
			PointsReward:  30,
			HonorPoints:   10,
			IsActive:      true,
			Order:         9,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "ach_streak_7",
			Name:          "Week of Wonders",
			Description:   "Complete tasks on 7 days in a row",
			Icon:          "/assets/badges/streak_7.png",
			Dimension:     model.DimensionBehavior,
			Level:         model.LevelSilver,
			ConditionType: model.ConditionConsecutiveDays,
			Requirement:   7,
			PointsReward:  100,
			HonorPoints:   40,
			IsActive:      true,
			Order:         10,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "ach_streak_30",
			Name:          "Unstoppable",
			Description:   "Complete tasks on 30 days in a row",
			Icon:          "/assets/badges/streak_30.png",
			Dimension:     model.DimensionBehavior,
			Level:         model.LevelLegendary,
			ConditionType: model.ConditionConsecutiveDays,
			Requirement:   30,
			PointsReward:  500,
			HonorPoints:   200,
			Privileges:    jsonArray([]string{"choose_family_outing"}),
			IsActive:      true,
			Order:         11,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:                "ach_homework_streak",
			Name:              "Study Rhythm",
			Description:       "Keep a 5 day task streak as a homework regular",
			Icon:              "/assets/badges/homework_streak.png",
			Dimension:         model.DimensionBehavior,
			Category:          "homework",
			Level:             model.LevelSilver,
			ConditionType:     model.ConditionCategoryStreak,
			Requirement:       5,
			RequirementDetail: jsonDetail(model.RequirementDetail{Category: "homework"}),
			PointsReward:      80,
			HonorPoints:       30,
			IsActive:          true,
			Order:             12,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:            "ach_streak_keeper",
			Name:          "Streak Keeper",
			Description:   "Reach a 14 day streak on your avatar",
			Icon:          "/assets/badges/streak_keeper.png",
			Dimension:     model.DimensionBehavior,
			Level:         model.LevelGold,
			ConditionType: model.ConditionStreakAnyTime,
			Requirement:   14,
			PointsReward:  150,
			HonorPoints:   50,
			IsActive:      true,
			Order:         13,
			CreatedAt:     now,
			UpdatedAt:     now,
		},

		// Behavior: early birds
		{
			ID:            "ach_early_5",
			Name:          "Early Bird",
			Description:   "Complete 5 tasks before 8 in the morning",
			Icon:          "/assets/badges/early_5.png",
			Dimension:     model.DimensionBehavior,
			Level:         model.LevelBronze,
			ConditionType: model.ConditionEarlyCompletion,
			Requirement:   5,
			PointsReward:  40,
			HonorPoints:   15,
			IsActive:      true,
			Order:         14,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "ach_early_25",
			Name:          "Dawn Patrol",
			Description:   "Complete 25 tasks before 8 in the morning",
			Icon:          "/assets/badges/early_25.png",
			Dimension:     model.DimensionBehavior,
			Level:         model.LevelGold,
			ConditionType: model.ConditionEarlyCompletion,
			Requirement:   25,
			PointsReward:  150,
			HonorPoints:   50,
			IsActive:      true,
			Order:         15,
			CreatedAt:     now,
			UpdatedAt:     now,
		},

		// Behavior: fast turnaround after rejection
		{
			ID:            "ach_bounce_back",
			Name:          "Bounce Back",
			Description:   "Resubmit a rejected task within 30 minutes, 3 times",
			Icon:          "/assets/badges/bounce_back.png",
			Dimension:     model.DimensionBehavior,
			Level:         model.LevelSilver,
			ConditionType: model.ConditionResubmitQuick,
			Requirement:   3,
			PointsReward:  60,
			HonorPoints:   25,
			IsActive:      true,
			Order:         16,
			CreatedAt:     now,
			UpdatedAt:     now,
		},

		// Surprise: hidden until earned
		{
			ID:                "ach_night_owl",
			Name:              "While the House Sleeps",
			Description:       "Finish a task before 6 in the morning",
			Icon:              "/assets/badges/night_owl.png",
			Dimension:         model.DimensionSurprise,
			Level:             model.LevelGold,
			ConditionType:     model.ConditionSpecificTime,
			Requirement:       1,
			RequirementDetail: jsonDetail(model.RequirementDetail{Hour: intPtr(6)}),
			PointsReward:      100,
			HonorPoints:       40,
			IsHidden:          true,
			IsActive:          true,
			Order:             17,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:                "ach_before_school",
			Name:              "Before the Bell",
			Description:       "Finish a task before 8 in the morning on any day",
			Icon:              "/assets/badges/before_school.png",
			Dimension:         model.DimensionSurprise,
			Level:             model.LevelBronze,
			ConditionType:     model.ConditionSpecificTime,
			Requirement:       1,
			RequirementDetail: jsonDetail(model.RequirementDetail{Hour: &eight}),
			PointsReward:      30,
			HonorPoints:       10,
			IsHidden:          true,
			IsActive:          true,
			Order:             18,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:            "ach_birthday",
			Name:          "Birthday Spirit",
			Description:   "Complete a task on your birthday",
			Icon:          "/assets/badges/birthday.png",
			Dimension:     model.DimensionSurprise,
			Level:         model.LevelGold,
			ConditionType: model.ConditionBirthdayTask,
			Requirement:   1,
			PointsReward:  100,
			HonorPoints:   50,
			Privileges:    jsonArray([]string{"birthday_dessert_choice"}),
			IsHidden:      true,
			IsActive:      true,
			Order:         19,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	return achievements
}

func jsonDetail(detail model.RequirementDetail) json.RawMessage {
	raw, _ := json.Marshal(detail)
	return raw
}

func jsonArray(items []string) json.RawMessage {
	raw, _ := json.Marshal(items)
	return raw
}

func intPtr(v int) *int {
	return &v
}
