package database

import (
	"encoding/json"
	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the mysql connection. Schema migration and seeding only run
// when migrate is set, so a plain restart never alters the schema; deploys
// pass -migrate (or -migrate-only) when the models changed.
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Challenge{},
		&model.Submission{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Translation{},
		&model.Subscriber{},
		&model.AssessmentQuestion{},
		&model.AssessmentResult{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedAchievements(db)
	seedAssessmentQuestions(db)

	return db, nil
}

// seedAchievements inserts the default achievement catalog on first boot.
func seedAchievements(db *gorm.DB) {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Achievement{
		{Code: "first_steps", Title: "First Steps", Description: "Submit your first workflow", Icon: "🚀", XPReward: 25, Criteria: model.CriteriaFirstSubmission, Threshold: 1},
		{Code: "sharp_eye", Title: "Sharp Eye", Description: "Score 90 or above on a challenge", Icon: "🎯", XPReward: 50, Criteria: model.CriteriaScoreAtLeast, Threshold: 90},
		{Code: "flawless", Title: "Flawless", Description: "Score a perfect 100", Icon: "💎", XPReward: 100, Criteria: model.CriteriaPerfectScore, Threshold: 100},
		{Code: "apprentice", Title: "Apprentice", Description: "Complete 5 challenges", Icon: "🛠️", XPReward: 75, Criteria: model.CriteriaChallengesCompleted, Threshold: 5},
		{Code: "journeyman", Title: "Journeyman", Description: "Complete 20 challenges", Icon: "⚙️", XPReward: 200, Criteria: model.CriteriaChallengesCompleted, Threshold: 20},
		{Code: "week_warrior", Title: "Week Warrior", Description: "Keep a 7-day streak", Icon: "🔥", XPReward: 100, Criteria: model.CriteriaStreakDays, Threshold: 7},
		{Code: "dedicated", Title: "Dedicated", Description: "Keep a 30-day streak", Icon: "🏆", XPReward: 500, Criteria: model.CriteriaStreakDays, Threshold: 30},
		{Code: "rising_star", Title: "Rising Star", Description: "Reach 1000 XP", Icon: "⭐", XPReward: 100, Criteria: model.CriteriaTotalXP, Threshold: 1000},
		{Code: "automation_master", Title: "Automation Master", Description: "Reach 10000 XP", Icon: "👑", XPReward: 1000, Criteria: model.CriteriaTotalXP, Threshold: 10000},
	}
	for _, a := range defaults {
		db.Create(&a)
	}
}

// seedAssessmentQuestions inserts the level-assessment question bank on
// first boot so a fresh install can run the onboarding quiz.
func seedAssessmentQuestions(db *gorm.DB) {
	var count int64
	db.Model(&model.AssessmentQuestion{}).Count(&count)
	if count > 0 {
		return
	}

	choices := func(opts ...string) datatypes.JSON {
		b, _ := json.Marshal(opts)
		return datatypes.JSON(b)
	}

	defaults := []model.AssessmentQuestion{
		{Text: "What is a workflow trigger?", Choices: choices("A node that starts a workflow run", "A node that stops a workflow", "A way to rename a workflow", "A scheduled backup"), CorrectIndex: 0, Weight: 1, LevelTag: model.LevelBeginner, Enabled: true},
		{Text: "Which node would you use to call an external REST API?", Choices: choices("Set node", "HTTP Request node", "Merge node", "NoOp node"), CorrectIndex: 1, Weight: 1, LevelTag: model.LevelBeginner, Enabled: true},
		{Text: "How do you reference the output of a previous node in an expression?", Choices: choices("By node name via the expression syntax", "Only through environment variables", "By re-running the node", "It is not possible"), CorrectIndex: 0, Weight: 2, LevelTag: model.LevelIntermediate, Enabled: true},
		{Text: "What does a Merge node in 'combine by key' mode do?", Choices: choices("Concatenates JSON strings", "Joins two item streams on a matching field", "Duplicates items", "Filters out null items"), CorrectIndex: 1, Weight: 2, LevelTag: model.LevelIntermediate, Enabled: true},
		{Text: "When should you use a sub-workflow?", Choices: choices("Never, they are deprecated", "To reuse a sequence of nodes across workflows", "Only for error handling", "To speed up a single node"), CorrectIndex: 1, Weight: 2, LevelTag: model.LevelIntermediate, Enabled: true},
		{Text: "How do you make a workflow idempotent against duplicate webhook deliveries?", Choices: choices("Increase the timeout", "Deduplicate on a delivery id before side effects", "Use more branches", "Disable the webhook"), CorrectIndex: 1, Weight: 3, LevelTag: model.LevelAdvanced, Enabled: true},
		{Text: "What is the effect of 'Always Output Data' on a node?", Choices: choices("The node emits an empty item even when it produced none", "The node retries forever", "The node logs verbosely", "The node runs in parallel"), CorrectIndex: 0, Weight: 3, LevelTag: model.LevelAdvanced, Enabled: true},
		{Text: "How should secrets be handled in workflow definitions?", Choices: choices("Inline in node parameters", "Via the credential store, referenced by the node", "In a Set node", "Base64-encoded in the JSON"), CorrectIndex: 1, Weight: 2, LevelTag: model.LevelIntermediate, Enabled: true},
	}
	for _, q := range defaults {
		db.Create(&q)
	}
}
