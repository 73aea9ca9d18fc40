package models

import "time"

// ActivationCode is a one-shot code the admin hands out to extend a user's
// chat quota window.
type ActivationCode struct {
	Code        string         `gorm:"column:code;type:text;primaryKey" json:"code"`
	Type        ActivationType `gorm:"column:type;type:text" json:"type"`
	Duration    int            `gorm:"column:duration" json:"duration"` // days
	Used        bool           `gorm:"column:used;index;default:false" json:"used"`
	UsedBy      string         `gorm:"column:used_by;type:text" json:"used_by,omitempty"`
	UsedAt      *time.Time     `gorm:"column:used_at;type:timestamptz" json:"used_at,omitempty"`
	Description string         `gorm:"column:description;type:text" json:"description"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (ActivationCode) TableName() string { return "activation_codes" }
