package checkout

type State string

const (
	StateIdle            State = "idle"
	StateSubmitting      State = "submitting"
	StateSubmitError     State = "submit_error"
	StateAwaitingPayment State = "awaiting_payment"
	StateSettled         State = "settled"
	StateNotFound        State = "not_found"
)

// CanSubmit reports whether the payer form accepts a submission.
func (s State) CanSubmit() bool {
	return s == StateIdle || s == StateSubmitError
}
