package core

// Summary is the compact view of one allocation, as printed by the CLI.
type Summary struct {
	Pay       Money
	Spent     Money
	Remaining Money
	Result    AllocationResult
}

// Summarize derives the printed figures from an allocation of pay.
func Summarize(pay int64, r AllocationResult) Summary {
	return Summary{
		Pay:       Money{Cents: pay},
		Spent:     Money{Cents: r.Spent(pay)},
		Remaining: Money{Cents: r.RemainingPay},
		Result:    r,
	}
}
