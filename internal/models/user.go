package models

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
}
