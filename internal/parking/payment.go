package parking

import "fmt"

// PaymentPolicy settles a computed fee. A nil return means the payment
// went through; any error means it was declined and the exit must not
// release the spot. Policies may record transactions on their own but
// never touch lot state directly.
type PaymentPolicy interface {
	Pay(amount int64) error
}

// CashPayment settles every fee immediately.
type CashPayment struct{}

func (CashPayment) Pay(amount int64) error {
	return nil
}

// CardPayment delegates to an authorizer, typically a gateway client.
// A nil authorizer approves everything.
type CardPayment struct {
	Authorize func(amount int64) error
}

func (c CardPayment) Pay(amount int64) error {
	if c.Authorize == nil {
		return nil
	}
	if err := c.Authorize(amount); err != nil {
		return fmt.Errorf("card authorization: %w", err)
	}
	return nil
}
