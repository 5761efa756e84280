package domain

import "time"

// MaxDelegationDuration caps every authority delegation.
const MaxDelegationDuration = 24 * time.Hour

// AuthorityDelegation is a temporary, revocable grant of write authority from
// the owning service of a model to another service.
type AuthorityDelegation struct {
	DelegationID string     `json:"delegationID"` // Primary Key (UUID)
	FromService  string     `json:"fromService"`  // Must be the registered owner
	ToService    string     `json:"toService"`
	ModelName    string     `json:"modelName"`
	GrantedBy    string     `json:"grantedBy"` // UserID Reference
	Reason       string     `json:"reason"`
	GrantedAt    time.Time  `json:"grantedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	IsActive     bool       `json:"isActive"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
}

// IsCurrent reports whether the delegation grants authority right now:
// active, not revoked, not expired.
func (d *AuthorityDelegation) IsCurrent(now time.Time) bool {
	return d.IsActive && d.RevokedAt == nil && now.Before(d.ExpiresAt)
}
