package models

import "time"

type ActivationType string

const (
	ActivationTemp ActivationType = "temp"
	ActivationFull ActivationType = "full"
)

// User is a tenant: a registered store owner. All catalog, order, and
// message rows are scoped by the user id.
type User struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Username string `gorm:"column:username;type:text;uniqueIndex" json:"username"`
	Password string `gorm:"column:password;type:text" json:"-"`
	Email    string `gorm:"column:email;type:text" json:"email"`
	Name     string `gorm:"column:name;type:text" json:"name"`

	// Message quota accounting. Free messages are consumed first; after
	// that, requests pass only while the activation window is open.
	MessageCount          int            `gorm:"column:message_count;default:0" json:"message_count"`
	FreeMessagesRemaining int            `gorm:"column:free_messages_remaining;default:50" json:"free_messages_remaining"`
	ActivationCode        string         `gorm:"column:activation_code;type:text" json:"activation_code,omitempty"`
	ActivationExpiry      *time.Time     `gorm:"column:activation_expiry;type:timestamptz" json:"activation_expiry,omitempty"`
	ActivationType        ActivationType `gorm:"column:activation_type;type:text;default:temp" json:"activation_type"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// HasQuota reports whether the user may send one more chat message right now.
func (u *User) HasQuota(now time.Time) bool {
	if u.FreeMessagesRemaining > 0 {
		return true
	}
	return u.ActivationExpiry != nil && u.ActivationExpiry.After(now)
}
