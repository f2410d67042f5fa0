package payment

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"photodrop/internal/session"
)

type intentRequest struct {
	PaymentMethodType string `json:"paymentMethodType"`
	Currency          string `json:"currency"`
	Amount            int64  `json:"amount"`
}

type intentResponse struct {
	ClientSecret string `json:"clientSecret"`
	Error        string `json:"error"`
}

// IntentClient asks the backend to create a server-side payment intent.
// Photo ids are deliberately not part of this call; the backend is the
// pricing authority and derives the charge from the authenticated account.
type IntentClient struct {
	http    *resty.Client
	loggerf func(format string, args ...interface{})
}

func NewIntentClient(baseURL string, loggerf func(format string, args ...interface{})) *IntentClient {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &IntentClient{
		http:    resty.New().SetBaseURL(baseURL),
		loggerf: loggerf,
	}
}

// Create returns the client secret for a fresh intent. Every attempt gets
// its own idempotency key so a retried user action cannot double-create.
func (c *IntentClient) Create(ctx context.Context, methodType, currency string, amountMinor int64, sess *session.Session) (string, error) {
	token, err := sess.Token()
	if err != nil {
		return "", err
	}

	var out intentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(intentRequest{PaymentMethodType: methodType, Currency: currency, Amount: amountMinor}).
		SetResult(&out).
		SetError(&out).
		Post("/client/payment")
	if err != nil {
		c.loggerf("level=error msg=payment intent request failed method=%s err=%v", methodType, err)
		return "", fmt.Errorf("%w: %v", ErrIntentCreation, err)
	}
	if resp.IsError() {
		c.loggerf("level=error msg=payment intent rejected method=%s status=%d backend_error=%s", methodType, resp.StatusCode(), out.Error)
		return "", fmt.Errorf("%w: status %d", ErrIntentCreation, resp.StatusCode())
	}
	if out.Error != "" {
		c.loggerf("level=error msg=payment intent backend error method=%s backend_error=%s", methodType, out.Error)
		return "", fmt.Errorf("%w: %s", ErrIntentCreation, out.Error)
	}
	if out.ClientSecret == "" {
		return "", fmt.Errorf("%w: empty client secret", ErrIntentCreation)
	}
	return out.ClientSecret, nil
}
