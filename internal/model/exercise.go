package model

type Exercise struct {
	BaseModel
	Name      string `gorm:"size:255;not null;index" json:"name"`
	Question  string `gorm:"type:text" json:"question"`
	CreatorID uint   `gorm:"index" json:"creatorId"`
}

func (Exercise) TableName() string {
	return "exercises"
}
