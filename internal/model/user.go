package model

import "time"

// Profile represents an application user as stored in the `profiles`
// table.  Profiles double as the holder records joined into ticket and
// check-in listings, so they carry a display name next to the
// credentials.  The json tags are omitted here because handlers define
// separate response types with appropriate tags.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  Email        – unique email address.
//  FullName     – display name shown to organizers and staff.
//  PasswordHash – bcrypt hashed password.
//  Role         – ORGANIZER, ATTENDEE or STAFF.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Profile struct {
	ID           string    // profiles.id
	Email        string    // profiles.email
	FullName     string    // profiles.full_name
	PasswordHash string    // profiles.password_hash
	Role         string    // profiles.role
	IsActive     bool      // profiles.is_active
	CreatedAt    time.Time // profiles.created_at
	UpdatedAt    time.Time // profiles.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a profile and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
