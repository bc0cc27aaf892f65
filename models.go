package accounts

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. Email, username, and slug are unique across all
// users; HashedPassword is never empty for a persisted record and never
// serialized. Users are soft deleted, never physically removed.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username"`
	Slug           string     `bun:"slug,notnull,unique" json:"slug"`
	Email          string     `bun:"email,notnull,unique" json:"email"`
	FirstName      string     `bun:"first_name,notnull" json:"first_name"`
	LastName       string     `bun:"last_name,notnull" json:"last_name"`
	HashedPassword string     `bun:"hashed_password,notnull" json:"-"`
	IsSuperuser    bool       `bun:"is_superuser,notnull,default:false" json:"is_superuser"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Subject returns the token subject claim for this user.
func (u *User) Subject() string {
	return strconv.FormatInt(u.ID, 10)
}

// PasswordResetStatus of a reset request
type PasswordResetStatus = string

const (
	// ResetRequestedStatus is the requested status
	ResetRequestedStatus PasswordResetStatus = "requested"
	// ResetExpiredStatus is the expired status
	ResetExpiredStatus PasswordResetStatus = "expired"
	// ResetChangedStatus is the changed status
	ResetChangedStatus PasswordResetStatus = "changed"
)

// PasswordReset tracks a single-use password reset session. The record ID
// doubles as the opaque session token mailed to the user.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_reset,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        int64      `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	ResetedAt     *time.Time `bun:"reseted_at,nullzero" json:"reseted_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// MarkPasswordAsReseted flags a reset session as consumed.
func MarkPasswordAsReseted(id uuid.UUID) *PasswordReset {
	r := &PasswordReset{}
	r.ID = id
	r.Status = ResetChangedStatus
	n := time.Now()
	r.ResetedAt = &n
	return r
}

// IsOutsideThresholdPeriod reports whether more than the given period has
// elapsed since t. The period uses time.ParseDuration syntax, e.g. "24h".
func IsOutsideThresholdPeriod(t time.Time, period string) (bool, error) {
	d, err := time.ParseDuration(period)
	if err != nil {
		return false, err
	}
	return time.Since(t) > d, nil
}

// ParseSubject converts a token subject claim back into a user ID.
func ParseSubject(subject string) (int64, error) {
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedClaims
	}
	return id, nil
}
