package admins

// Administrator of the distribution tool. The balance is a display-only
// decimal string, distributions never debit it.
type Administrator struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Active       bool   `json:"-"`
	Balance      string `json:"balance"`
}
