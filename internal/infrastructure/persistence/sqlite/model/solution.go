package model

type Solution struct {
	SolutionID    uint64  `gorm:"column:solution_id;primaryKey;autoIncrement"`
	IssueID       uint64  `gorm:"column:issue_id;not null;index"`
	Description   string  `gorm:"column:description;type:text;not null"`
	Steps         string  `gorm:"column:steps;type:text;not null"`
	Effectiveness float64 `gorm:"column:effectiveness_rating;not null;default:0"`
	Verified      bool    `gorm:"column:verified;not null;default:0"`
	CreatedBy     uint64  `gorm:"column:created_by;not null"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt     string  `gorm:"column:updated_at;type:text;not null"`
}

func (Solution) TableName() string {
	return "solutions"
}
