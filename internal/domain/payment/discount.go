package payment

import "context"

// Candidate is a bill the generator is about to create.
type Candidate struct {
	ClubID    string
	PlayerID  string
	TeamID    string
	Month     int
	Year      int
	FeeAmount int64
}

// DiscountPolicy decides how much to knock off a candidate's fee.
// Implementations may look up siblings, scholarships and the like.
type DiscountPolicy interface {
	Discount(ctx context.Context, c Candidate) (int64, error)
}

// NoDiscount is the default policy: every player pays the full fee.
type NoDiscount struct{}

// Discount always returns 0.
func (NoDiscount) Discount(context.Context, Candidate) (int64, error) {
	return 0, nil
}

// DiscountFunc adapts a plain function to DiscountPolicy.
type DiscountFunc func(ctx context.Context, c Candidate) (int64, error)

// Discount calls f.
func (f DiscountFunc) Discount(ctx context.Context, c Candidate) (int64, error) {
	return f(ctx, c)
}

// AmountDue applies a discount to a fee.
// PRE: discount >= 0
// POST: Returns fee - discount, floored at zero
func AmountDue(feeAmount, discount int64) (int64, error) {
	if discount < 0 {
		return 0, ErrNegativeAmount
	}
	if discount > feeAmount {
		return 0, nil
	}
	return feeAmount - discount, nil
}
