package contact

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalchuk/contacts-api/internal/database"
)

var contactColumns = []string{
	"id", "owner_id", "first_name", "last_name", "email",
	"phone", "birthday", "additional_data", "created_at", "updated_at",
}

func newMockContactRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewRepository(database.NewBunDB(sqlDB)), mock
}

func contactRow(id, ownerID int64, firstName string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(contactColumns).
		AddRow(id, ownerID, firstName, "Lovelace", "ada@example.com", nil, nil, nil, now, now)
}

func TestGetContact(t *testing.T) {
	repo, mock := newMockContactRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "contacts" (.+)id = 3(.+)owner_id = 1`).
		WillReturnRows(contactRow(3, 1, "Ada"))

	c, err := repo.Get(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)
	assert.Equal(t, "Ada", c.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetContactNotFound(t *testing.T) {
	repo, mock := newMockContactRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "contacts"`).
		WillReturnRows(sqlmock.NewRows(contactColumns))

	_, err := repo.Get(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContacts(t *testing.T) {
	repo, mock := newMockContactRepository(t)

	rows := contactRow(1, 1, "Ada")
	now := time.Now()
	rows.AddRow(int64(2), int64(1), "Grace", "Hopper", "grace@example.com", nil, nil, nil, now, now)

	mock.ExpectQuery(`SELECT (.+) FROM "contacts" (.+)owner_id = 1(.+)ORDER BY id ASC(.+)LIMIT 10`).
		WillReturnRows(rows)

	contacts, err := repo.List(context.Background(), 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Ada", contacts[0].FirstName)
	assert.Equal(t, "Grace", contacts[1].FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContactRow(t *testing.T) {
	repo, mock := newMockContactRepository(t)

	mock.ExpectQuery(`INSERT INTO "contacts"`).
		WillReturnRows(contactRow(5, 1, "Ada"))

	c, err := repo.Create(context.Background(), 1, CreateParams{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)
	assert.Equal(t, int64(1), c.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUpdateContactOnlySetsSuppliedFields pins the partial-update contract at
// the SQL level: a phone-only update must not touch any other column.
func TestUpdateContactOnlySetsSuppliedFields(t *testing.T) {
	matcher := sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		if !strings.Contains(actualSQL, expectedSQL) {
			return fmt.Errorf("query %q does not contain %q", actualSQL, expectedSQL)
		}
		for _, forbidden := range []string{"first_name =", "last_name =", "email =", "birthday =", "additional_data ="} {
			if strings.Contains(actualSQL, forbidden) {
				return fmt.Errorf("query %q unexpectedly assigns %q", actualSQL, forbidden)
			}
		}
		return nil
	})

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	repo := NewRepository(database.NewBunDB(sqlDB))

	phone := "555-0199"
	updated := contactRow(3, 1, "Ada")

	mock.ExpectQuery(`phone = '555-0199'`).WillReturnRows(updated)

	c, err := repo.Update(context.Background(), 1, 3, UpdateParams{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContactNotFoundRow(t *testing.T) {
	repo, mock := newMockContactRepository(t)

	mock.ExpectQuery(`UPDATE "contacts" SET`).
		WillReturnRows(sqlmock.NewRows(contactColumns))

	firstName := "Ada"
	_, err := repo.Update(context.Background(), 1, 42, UpdateParams{FirstName: &firstName})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContactRow(t *testing.T) {
	repo, mock := newMockContactRepository(t)

	mock.ExpectQuery(`DELETE FROM "contacts" (.+)id = 3(.+)owner_id = 1(.+)RETURNING`).
		WillReturnRows(contactRow(3, 1, "Ada"))

	c, err := repo.Delete(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContactNotFoundRow(t *testing.T) {
	repo, mock := newMockContactRepository(t)

	mock.ExpectQuery(`DELETE FROM "contacts"`).
		WillReturnRows(sqlmock.NewRows(contactColumns))

	_, err := repo.Delete(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
