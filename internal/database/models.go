package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the persistence model for the users table
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Email          string    `bun:"email,notnull"`
	HashedPassword string    `bun:"hashed_password,notnull"`
	AvatarURL      *string   `bun:"avatar_url"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// Contact is the persistence model for the contacts table. Ownership is a
// foreign key to users.id; deleting a user cascades to their contacts.
type Contact struct {
	bun.BaseModel `bun:"table:contacts"`

	ID             int64      `bun:"id,pk,autoincrement"`
	OwnerID        int64      `bun:"owner_id,notnull"`
	FirstName      string     `bun:"first_name,notnull"`
	LastName       string     `bun:"last_name,notnull"`
	Email          string     `bun:"email,notnull"`
	Phone          *string    `bun:"phone"`
	Birthday       *time.Time `bun:"birthday"`
	AdditionalData *string    `bun:"additional_data"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,notnull,default:now()"`
}
