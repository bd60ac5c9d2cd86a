package model

// Subject is static reference data for the school subjects a session can belong to
type Subject struct {
	ID   uint   `gorm:"primaryKey;column:subject_id" json:"subject_id"`
	Name string `gorm:"column:subject_name;not null;type:varchar(100)" json:"subject_name"`
}

// TableName specifies the table name for Subject
func (Subject) TableName() string {
	return "subjects"
}
