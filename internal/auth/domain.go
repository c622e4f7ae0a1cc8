package auth

// Operator is a back-office user allowed to sign in.
type Operator struct {
	Email        string
	PasswordHash string
}
