package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mkovalchuk/contacts-api/internal/database"
)

var ErrNotFound = errors.New("contact not found")

// Repository handles contact persistence. Every operation is scoped to the
// owning user so one account can never touch another's contacts.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves a single contact owned by the given user
func (r *Repository) Get(ctx context.Context, ownerID, id int64) (*Contact, error) {
	dbContact := new(database.Contact)
	err := r.db.NewSelect().
		Model(dbContact).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return mapDBContactToModel(dbContact), nil
}

// List returns the owner's contacts ordered by id, paginated by offset/limit
func (r *Repository) List(ctx context.Context, ownerID int64, skip, limit int) ([]*Contact, error) {
	var dbContacts []*database.Contact
	err := r.db.NewSelect().
		Model(&dbContacts).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	contacts := make([]*Contact, 0, len(dbContacts))
	for _, dbc := range dbContacts {
		contacts = append(contacts, mapDBContactToModel(dbc))
	}
	return contacts, nil
}

// Create inserts a contact and returns it with its assigned id
func (r *Repository) Create(ctx context.Context, ownerID int64, params CreateParams) (*Contact, error) {
	dbContact := &database.Contact{
		OwnerID:        ownerID,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Email:          params.Email,
		Phone:          params.Phone,
		Birthday:       params.Birthday,
		AdditionalData: params.AdditionalData,
	}

	_, err := r.db.NewInsert().
		Model(dbContact).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return mapDBContactToModel(dbContact), nil
}

// Update merges only the supplied fields into the stored contact. A missing
// row yields ErrNotFound without side effects.
func (r *Repository) Update(ctx context.Context, ownerID, id int64, params UpdateParams) (*Contact, error) {
	dbContact := new(database.Contact)

	q := r.db.NewUpdate().
		Model(dbContact).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID)

	if params.FirstName != nil {
		q = q.Set("first_name = ?", *params.FirstName)
	}
	if params.LastName != nil {
		q = q.Set("last_name = ?", *params.LastName)
	}
	if params.Email != nil {
		q = q.Set("email = ?", *params.Email)
	}
	if params.Phone != nil {
		q = q.Set("phone = ?", *params.Phone)
	}
	if params.Birthday != nil {
		q = q.Set("birthday = ?", *params.Birthday)
	}
	if params.AdditionalData != nil {
		q = q.Set("additional_data = ?", *params.AdditionalData)
	}

	result, err := q.
		Set("updated_at = NOW()").
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBContactToModel(dbContact), nil
}

// Delete removes a contact and returns the deleted row. Deleting an absent
// id is a no-op yielding ErrNotFound, so a double delete is safe.
func (r *Repository) Delete(ctx context.Context, ownerID, id int64) (*Contact, error) {
	dbContact := new(database.Contact)

	result, err := r.db.NewDelete().
		Model(dbContact).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to delete contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBContactToModel(dbContact), nil
}

func mapDBContactToModel(dbc *database.Contact) *Contact {
	return &Contact{
		ID:             dbc.ID,
		OwnerID:        dbc.OwnerID,
		FirstName:      dbc.FirstName,
		LastName:       dbc.LastName,
		Email:          dbc.Email,
		Phone:          dbc.Phone,
		Birthday:       dbc.Birthday,
		AdditionalData: dbc.AdditionalData,
		CreatedAt:      dbc.CreatedAt,
		UpdatedAt:      dbc.UpdatedAt,
	}
}
