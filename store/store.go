// Package store persists the state that outlives a single login: the
// device-token pair that lets a login skip the MFA challenge, and the
// answers previously accepted for a given challenge question so future
// identical challenges can be resolved without prompting anyone.
package store

// Store is the persistence surface the SDK's callers plug in. The core
// client never touches it; wiring it into the login flow is the caller's
// job.
type Store interface {
	// DeviceTokens returns the saved pair, both empty when none is saved.
	DeviceTokens() (cn, cv string, err error)
	// SaveDeviceTokens replaces the saved pair.
	SaveDeviceTokens(cn, cv string) error
	// Answers returns every answer ever accepted for the question, oldest
	// first.
	Answers(question string) ([]string, error)
	// SaveAnswer records an accepted answer; duplicates are ignored.
	SaveAnswer(question, answer string) error
}
