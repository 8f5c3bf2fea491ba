package model

type Issue struct {
	IssueID     uint64  `gorm:"column:issue_id;primaryKey;autoIncrement"`
	Title       string  `gorm:"column:title;type:text;not null"`
	Description string  `gorm:"column:description;type:text;not null"`
	CategoryID  *uint64 `gorm:"column:category_id;index"`
	Severity    string  `gorm:"column:severity;type:text;not null;default:medium"`
	Status      string  `gorm:"column:status;type:text;not null;default:open"`
	Tags        *string `gorm:"column:tags;type:text"`
	Attachments *string `gorm:"column:attachments;type:text"`
	CreatedBy   uint64  `gorm:"column:created_by;not null"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt   string  `gorm:"column:updated_at;type:text;not null"`
	ResolvedAt  *string `gorm:"column:resolved_at;type:text"`
}

func (Issue) TableName() string {
	return "issues"
}
