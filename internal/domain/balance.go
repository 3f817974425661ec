package domain

// UserBalance is the net, non-zero holdings of one user, ordered by unit
// description.
type UserBalance struct {
	User     User
	Holdings []UnitAmount
}

// Balances is the aggregated balance table ordered by username.
type Balances []UserBalance

// For returns the balance of the given username, if the user holds anything.
func (b Balances) For(username string) (UserBalance, bool) {
	for _, ub := range b {
		if ub.User.Username == username {
			return ub, true
		}
	}
	return UserBalance{}, false
}
