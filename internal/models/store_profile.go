package models

import "time"

// StoreProfile holds the public-facing store details fed into generation
// context. Exactly one row per user; created lazily with empty defaults on
// the first read and upserted on write.
type StoreProfile struct {
	UserID      string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Name        string `gorm:"column:name;type:text" json:"name"`
	Address     string `gorm:"column:address;type:text" json:"address"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Phone       string `gorm:"column:phone;type:text" json:"phone"`
	Email       string `gorm:"column:email;type:text" json:"email"`
	Website     string `gorm:"column:website;type:text" json:"website"`
	Logo        string `gorm:"column:logo;type:text" json:"logo"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (StoreProfile) TableName() string { return "store_profiles" }
