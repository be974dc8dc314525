package domain

// Currency is fixed by the payment backend.
const Currency = "INR"

type OrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Order is the backend's payment intent. OrderID and Key are what the
// checkout widget needs; without them checkout degrades to an acknowledgment.
type Order struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
}

func (o Order) WidgetReady() bool { return o.OrderID != "" && o.Key != "" }

type Verification struct {
	Verified bool `json:"verified"`
}

type PaymentLinkRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type PaymentLink struct {
	URL string `json:"url"`
}
