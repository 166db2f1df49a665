package contact

import "time"

// Contact is the domain model for an address-book entry. Optional fields are
// pointers so that partial updates can tell "absent" from "set to zero value".
type Contact struct {
	ID             int64      `json:"id"`
	OwnerID        int64      `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	Birthday       *time.Time `json:"birthday,omitempty"`
	AdditionalData *string    `json:"additional_data,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateParams carries the fields for a new contact
type CreateParams struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          *string
	Birthday       *time.Time
	AdditionalData *string
}

// UpdateParams carries a partial update. Nil fields are left untouched.
type UpdateParams struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Birthday       *time.Time
	AdditionalData *string
}

// IsEmpty reports whether the update carries no fields at all
func (p UpdateParams) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Phone == nil && p.Birthday == nil && p.AdditionalData == nil
}
