package model

type Category struct {
	CategoryID    uint64  `gorm:"column:category_id;primaryKey;autoIncrement"`
	Name          string  `gorm:"column:name;type:text;not null;uniqueIndex"`
	Description   *string `gorm:"column:description;type:text"`
	Color         string  `gorm:"column:color;type:text;not null;default:#6b7280"`
	AccidentReset bool    `gorm:"column:accident_reset_trigger;not null;default:1"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
}

func (Category) TableName() string {
	return "categories"
}
