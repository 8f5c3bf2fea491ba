package model

// Accident rows are append-only: the tracker creates them and never
// updates or deletes them through normal flow.
type Accident struct {
	AccidentID   uint64  `gorm:"column:accident_id;primaryKey;autoIncrement"`
	CategoryID   *uint64 `gorm:"column:category_id;index"`
	IssueID      uint64  `gorm:"column:issue_id;not null"`
	OccurredAt   string  `gorm:"column:occurred_at;type:text;not null;index"`
	ResetCounter bool    `gorm:"column:reset_counter;not null;default:1"`
}

func (Accident) TableName() string {
	return "accidents"
}
