package model

import "time"

// Credential holds a secret for an external service. Service identifies the
// system the secret unlocks ("anthropic", "gemini", "github").
type Credential struct {
	ID        int64
	Service   string
	Value     string
	UpdatedAt time.Time
}
