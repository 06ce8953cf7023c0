package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"phPortfolio/internal/config"
)

// InitDatabase 使用配置初始化 PostgreSQL 连接，并返回 GORM 数据库实例。
func InitDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// AutoMigrate 迁移全部内容表。cmd/api 启动时调用一次。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Tag{},
		&Project{},
		&ProjectTranslation{},
		&ProjectImage{},
		&ProjectURL{},
		&Experience{},
		&ExperienceTranslation{},
		&Education{},
		&EducationTranslation{},
		&Course{},
		&SkillCategory{},
		&SkillCategoryTranslation{},
		&Skill{},
		&SkillTranslation{},
		&Certification{},
		&CertificationTranslation{},
		&Profile{},
		&ProfileTranslation{},
		&CVDocument{},
	)
}
