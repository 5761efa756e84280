package domain

// GovernanceContext identifies who is performing a governed operation: the
// calling service (authority subject) and the acting user (audit subject).
// It is threaded explicitly through every service call rather than smuggled
// through ambient state.
type GovernanceContext struct {
	Service string `json:"service"`
	User    string `json:"user"`
}
