package backend

import (
	"context"
	"net/http"

	"hotelapp_web/internal/domain"
)

const paymentsBase = "/payments"

type PaymentClient struct{ c *Client }

var _ domain.PaymentAPI = (*PaymentClient)(nil)

// CreateOrder opens a payment intent for amountMinor (paise) in INR.
func (pc *PaymentClient) CreateOrder(ctx context.Context, amountMinor int64) (domain.Order, error) {
	if amountMinor <= 0 {
		return domain.Order{}, domain.NewError(domain.KindValidationFailed, "Invalid amount provided to createPaymentOrder")
	}
	var out domain.Order
	p, err := pc.c.do(ctx, call{method: http.MethodPost, path: paymentsBase + "/orders",
		body:       domain.OrderRequest{Amount: amountMinor, Currency: domain.Currency},
		defaultMsg: "Failed to create payment order"})
	if err != nil {
		return out, err
	}
	if _, isText := p.Value().(string); isText {
		// plain-text acknowledgment: no widget fields, checkout degrades
		return out, nil
	}
	return out, p.Decode(&out)
}

// Verify forwards the widget's raw response for signature checking.
func (pc *PaymentClient) Verify(ctx context.Context, widgetResponse map[string]any) (domain.Verification, error) {
	var out domain.Verification
	p, err := pc.c.do(ctx, call{method: http.MethodPost, path: paymentsBase + "/verify", body: widgetResponse,
		defaultMsg: "Failed to verify payment"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (pc *PaymentClient) CreatePaymentLink(ctx context.Context, amountMinor int64, description string) (domain.PaymentLink, error) {
	if description == "" {
		description = "Payment"
	}
	var out domain.PaymentLink
	p, err := pc.c.do(ctx, call{method: http.MethodPost, path: paymentsBase + "/payment-link",
		body:       domain.PaymentLinkRequest{Amount: amountMinor, Description: description},
		defaultMsg: "Failed to create payment link"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}
