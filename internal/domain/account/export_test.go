package account

// SetBcryptCostForTest lowers the hashing cost so tests stay fast.
func SetBcryptCostForTest(cost int) func() {
	old := bcryptCost
	bcryptCost = cost
	return func() { bcryptCost = old }
}
