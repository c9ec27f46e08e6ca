package children

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderOther       Gender = "other"
	GenderUndisclosed Gender = "undisclosed"
)

// Child is a caregiver-owned child profile
type Child struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       string     `json:"user_id" gorm:"size:64;not null;index"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	DOB          *time.Time `json:"dob" gorm:"type:date"`
	Gender       *Gender    `json:"gender" gorm:"size:20"`
	Region       *string    `json:"region" gorm:"size:120"`
	LanguagePref *string    `json:"language_pref" gorm:"size:50"`
	AgeStage     *string    `json:"age_stage" gorm:"size:50"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Child) ToResponse() ChildResponse {
	resp := ChildResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		Gender:       c.Gender,
		Region:       c.Region,
		LanguagePref: c.LanguagePref,
	}
	if c.DOB != nil {
		dob := c.DOB.Format(dateLayout)
		resp.DOB = &dob
	}
	return resp
}

func (Child) TableName() string {
	return "children"
}
