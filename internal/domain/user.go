package domain

import "strings"

// UserKind is the role a user holds towards the support desk.
type UserKind string

const (
	UserKindAdmin      UserKind = "ADMIN"
	UserKindEndUser    UserKind = "END_USER"
	UserKindSuperAdmin UserKind = "SUPER_ADMIN"
	UserKindUndefined  UserKind = "UNDEFINED"
)

// ParseUserKind maps a claim value to a UserKind. Unknown values are UNDEFINED.
func ParseUserKind(s string) UserKind {
	switch k := UserKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case UserKindAdmin, UserKindEndUser, UserKindSuperAdmin:
		return k
	default:
		return UserKindUndefined
	}
}

// IsOperator reports whether the kind may claim and answer threads.
// Only ADMIN qualifies; SUPER_ADMIN does not.
func (k UserKind) IsOperator() bool {
	return k == UserKindAdmin
}

// IsEndUser reports whether the kind may open threads.
func (k UserKind) IsEndUser() bool {
	return k == UserKindEndUser
}

// UserSummary identifies a user. It is taken from verified token claims and
// stored denormalised on threads and messages.
type UserSummary struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Kind  UserKind `json:"kind"`
}

// Group keys.
const (
	personalGroupPrefix = "personal:"
	OperatorPoolGroup   = "operator-pool"
)

// PersonalGroup returns the group every connection of userID joins.
func PersonalGroup(userID string) string {
	return personalGroupPrefix + userID
}
