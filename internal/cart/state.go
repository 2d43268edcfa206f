package cart

// State is the checkout lifecycle.
type State string

const (
	StateIdle            State = "IDLE"
	StateAddressSelected State = "ADDRESS_SELECTED"
	StateOrderCreated    State = "ORDER_CREATED"
	StatePaymentPending  State = "PAYMENT_PENDING"
	StatePaymentVerified State = "PAYMENT_VERIFIED"
	StatePaymentFailed   State = "PAYMENT_FAILED"
)

var transitions = map[State][]State{
	StateIdle:            {StateAddressSelected},
	StateAddressSelected: {StateAddressSelected, StateIdle, StateOrderCreated},
	StateOrderCreated:    {StatePaymentPending},
	StatePaymentPending:  {StatePaymentVerified, StatePaymentFailed},
	StatePaymentVerified: {StateAddressSelected, StateIdle},
	StatePaymentFailed:   {StateAddressSelected, StateIdle},
}

// IsTerminal reports whether a checkout attempt has finished.
func (s State) IsTerminal() bool {
	return s == StatePaymentVerified || s == StatePaymentFailed
}

func (s State) String() string { return string(s) }

// CanTransitionTo reports whether moving from s to next is allowed.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
