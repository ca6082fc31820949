package domain

import "time"

// Account is a registered identity. An account is created by local
// registration or by the first federated login; it is never deleted.
// Identity fields are immutable after creation, only the quota counter
// changes over the account's life.
type Account struct {
	ID             int64
	Username       string
	PasswordHash   string  // argon2id PHC encoded; a random placeholder for federation-only accounts
	FederatedID    *string // external identity-provider subject, unique when set
	QuotaRemaining int     // bounded below by 0, replenished to the ceiling on a fixed cadence
	CreatedAt      time.Time
}

// PublicAccount is the externally visible shape of an account. The password
// hash never leaves the core.
type PublicAccount struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Federated      bool   `json:"federated"`
	QuotaRemaining int    `json:"quotaRemaining"`
}

// Public strips the secret material from an account.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:             a.ID,
		Username:       a.Username,
		Federated:      a.FederatedID != nil,
		QuotaRemaining: a.QuotaRemaining,
	}
}
