package models

import "time"

// PageAccount is one connected Facebook page (and optionally its linked
// Instagram account) with its page access token.
type PageAccount struct {
	ID               string         `bson:"id" json:"id"`
	Name             string         `bson:"name" json:"name"`
	AccessToken      string         `bson:"access_token" json:"access_token"`
	InstagramAccount map[string]any `bson:"instagram_account,omitempty" json:"instagram_account,omitempty"`
}

// PageCredential is the OAuth material a user obtains when connecting their
// Facebook account: the user token plus the page tokens the webhook needs
// to resolve an inbound page id to a tenant and reply on the right page.
// Stored in Mongo; the nested accounts array maps naturally to a document.
type PageCredential struct {
	UserID      string        `bson:"user_id" json:"user_id"`
	FacebookID  string        `bson:"facebook_id" json:"facebook_id"`
	Name        string        `bson:"name" json:"name"`
	Email       string        `bson:"email" json:"email"`
	AccessToken string        `bson:"access_token" json:"access_token"`
	ExpiresAt   time.Time     `bson:"expires_at" json:"expires_at"`
	Accounts    []PageAccount `bson:"accounts" json:"accounts"`
	ConnectedAt time.Time     `bson:"connected_at" json:"connected_at"`
}
