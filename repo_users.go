package accounts

import (
	"context"
	"database/sql"
	"net/mail"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the narrow repository boundary the auth core consumes. Each call
// is atomic and context-bound; transient storage failures surface as
// ErrRepositoryUnavailable once the driver gives up.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Save(ctx context.Context, record *User) (*User, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error

	List(ctx context.Context, offset, limit int) ([]*User, error)
	Count(ctx context.Context) (int, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns the bun-backed Users repository.
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapSelectError(err)
	}
	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapSelectError(err)
	}
	return record, nil
}

// GetByIdentifier resolves an identifier against the unique user columns,
// trying the most specific interpretation first: email, then username, then
// slug, then the numeric id.
func (a *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	for _, opt := range resolveUserIdentifier(identifier) {
		record := &User{}
		err := a.db.NewSelect().
			Model(record).
			Where("?TableAlias."+opt.column+" = ?", opt.value).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, wrapRepositoryErr(err)
		}
		return record, nil
	}

	return nil, ErrUserNotFound
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateIdentifier
		}
		return nil, wrapRepositoryErr(err)
	}

	return record, nil
}

func (a *users) Save(ctx context.Context, record *User) (*User, error) {
	return a.SaveTx(ctx, a.db, record)
}

// SaveTx persists mutations to an existing user. The hashed password and
// superuser flag travel with the record so admin operations can use the
// same path as self-service updates.
func (a *users) SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	res, err := tx.NewUpdate().
		Model(record).
		Column("username", "slug", "email", "first_name", "last_name", "hashed_password", "is_superuser").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateIdentifier
		}
		return nil, wrapRepositoryErr(err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrUserNotFound
	}

	return a.GetByID(ctx, record.ID)
}

var resetUserPasswordSQL = `UPDATE users
SET hashed_password = ?
WHERE deleted_at IS NULL AND id = ?;`

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error {
	res, err := tx.NewRaw(resetUserPasswordSQL, passwordHash, id).Exec(ctx)
	if err != nil {
		return wrapRepositoryErr(err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) List(ctx context.Context, offset, limit int) ([]*User, error) {
	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Order("usr.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, wrapRepositoryErr(err)
	}
	return records, nil
}

func (a *users) Count(ctx context.Context) (int, error) {
	count, err := a.db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return 0, wrapRepositoryErr(err)
	}
	return count, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Username == "" {
		record.Username = usernameFromEmail(record.Email)
	}

	if record.Slug == "" {
		record.Slug = slugify(record.Username)
	}
}

func usernameFromEmail(email string) string {
	if strings.Contains(email, "@") {
		return strings.Split(email, "@")[0]
	}
	return email
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, ".", "-")
	return s
}

type identifierOption struct {
	column string
	value  any
}

func resolveUserIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 4)

	if isEmail(trimmed) {
		options = append(options, identifierOption{column: "email", value: trimmed})
	}

	options = append(options,
		identifierOption{column: "username", value: trimmed},
		identifierOption{column: "slug", value: trimmed},
	)

	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil && id > 0 {
		options = append(options, identifierOption{column: "id", value: id})
	}

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func mapSelectError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return wrapRepositoryErr(err)
}

func wrapRepositoryErr(err error) error {
	return errors.Wrap(err, ErrRepositoryUnavailable.Category, ErrRepositoryUnavailable.Message).
		WithTextCode(ErrRepositoryUnavailable.TextCode)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: users.") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
