package ports

// NonceVerifier issues and checks intent-scoped anti-replay tokens
type NonceVerifier interface {
	// Issue returns a fresh token valid only for intent
	Issue(intent string) (string, error)

	// Consume reports whether token is valid for intent and marks it used
	Consume(intent, token string) bool
}
