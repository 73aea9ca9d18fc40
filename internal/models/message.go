package models

import (
	"time"

	"gorm.io/datatypes"
)

type Channel string

const (
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
	ChannelTest      Channel = "test"
)

type MessageRole string

const (
	RoleCustomer  MessageRole = "customer"
	RoleGenerated MessageRole = "generated"
)

// Message is one conversation turn. Rows are immutable once created;
// conversation history is the newest rows per user reversed into
// chronological order.
type Message struct {
	ID       string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   string         `gorm:"column:user_id;type:uuid;index:idx_messages_user_created" json:"user_id"`
	Channel  Channel        `gorm:"column:channel;type:text" json:"channel"`
	Role     MessageRole    `gorm:"column:role;type:text" json:"role"`
	Content  string         `gorm:"column:content;type:text" json:"content"`
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index:idx_messages_user_created" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
