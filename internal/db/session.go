package db

import "time"

type Session struct {
	ID            string    `gorm:"primaryKey;size:64"`
	ViewerID      int       `gorm:"index"`
	ViewerName    string    `gorm:"size:64"`
	PreferJudging bool      `gorm:"not null;default:false"`
	JudgeSkill    string    `gorm:"size:32"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}
