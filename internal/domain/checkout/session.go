package checkout

// State names the observable phase of a checkout attempt.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingPayment State = "awaiting_payment"
	StateFinalizing      State = "finalizing"
	StateCompleted       State = "completed"
	StateAbandoned       State = "abandoned"
	StateRejected        State = "rejected"
)

// Session is what the browser hands to the payment widget.
type Session struct {
	PublicKey string            `json:"publicKey"`
	Email     string            `json:"email"`
	Amount    int               `json:"amount"`
	Currency  string            `json:"currency"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata"`
	State     State             `json:"state"`
}

// Result reports the outcome of completion. Warnings list bookkeeping steps
// that failed after a confirmed payment.
type Result struct {
	State     State    `json:"status"`
	Reference string   `json:"reference"`
	OrderID   string   `json:"orderId,omitempty"`
	Warnings  []string `json:"warnings"`
}
