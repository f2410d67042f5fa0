package payment

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"photodrop/internal/domain"
	"photodrop/internal/gateway"
	"photodrop/internal/session"
)

type redirectReturn struct {
	status string
}

// RedirectAdapter drives the hosted third-party checkout: create an intent,
// send the user to the provider's page with a loopback return URL, and map
// whatever comes back onto the common confirmation contract.
type RedirectAdapter struct {
	intents    *IntentClient
	hostedBase string
	listenAddr string
	currency   string
	openURL    func(string) error
	loggerf    func(format string, args ...interface{})
}

func NewRedirectAdapter(intents *IntentClient, hostedBase, listenAddr, currency string, openURL func(string) error, loggerf func(format string, args ...interface{})) *RedirectAdapter {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &RedirectAdapter{
		intents:    intents,
		hostedBase: hostedBase,
		listenAddr: listenAddr,
		currency:   currency,
		openURL:    openURL,
		loggerf:    loggerf,
	}
}

func (a *RedirectAdapter) Method() domain.PaymentMethod {
	return domain.PaymentMethodPayPal
}

func (a *RedirectAdapter) Available(_ context.Context, amountMinor int64, currency string) bool {
	return a.hostedBase != "" && amountMinor > 0 && currency != ""
}

func (a *RedirectAdapter) Confirm(ctx context.Context, photoIDs []domain.PhotoID, amountMinor int64, sess *session.Session) (*Confirmation, error) {
	if len(photoIDs) == 0 {
		return nil, fmt.Errorf("redirect confirm invoked with empty photo set")
	}

	clientSecret, err := a.intents.Create(ctx, string(a.Method()), a.currency, amountMinor, sess)
	if err != nil {
		return nil, err
	}
	intentRef, _ := gateway.RefFromClientSecret(clientSecret)

	returns := make(chan redirectReturn, 1)
	ln, stop, err := a.serveReturnListener(returns)
	if err != nil {
		return nil, &Error{IntentRef: intentRef, Err: fmt.Errorf("%w: %v", ErrGatewayConfirmation, err)}
	}
	defer stop()

	hostedURL := a.buildHostedURL(intentRef, amountMinor, ln.Addr().String())
	a.loggerf("level=info msg=redirecting to hosted checkout intent=%s url=%s", intentRef, hostedURL)
	if a.openURL != nil {
		if err := a.openURL(hostedURL); err != nil {
			return nil, &Error{IntentRef: intentRef, Err: fmt.Errorf("%w: %v", ErrGatewayConfirmation, err)}
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ret := <-returns:
		switch ret.status {
		case "succeeded", "completed", "approved":
			a.loggerf("level=info msg=hosted checkout completed intent=%s status=%s", intentRef, ret.status)
			return &Confirmation{
				IntentRef:     intentRef,
				Method:        a.Method(),
				AmountMinor:   amountMinor,
				GatewayStatus: ret.status,
			}, nil
		case "cancelled", "canceled", "failed":
			return nil, &Error{IntentRef: intentRef, GatewayStatus: ret.status, Err: ErrGatewayConfirmation}
		default:
			return nil, &Error{IntentRef: intentRef, GatewayStatus: ret.status, Err: ErrIncompleteIntent}
		}
	}
}

func (a *RedirectAdapter) buildHostedURL(intentRef string, amountMinor int64, returnHost string) string {
	q := url.Values{}
	q.Set("ref", intentRef)
	q.Set("amount", strconv.FormatInt(amountMinor, 10))
	q.Set("return_url", "http://"+returnHost+"/return")
	return a.hostedBase + "?" + q.Encode()
}

// serveReturnListener runs a single-purpose loopback endpoint the provider
// redirects back to. It lives only for the duration of one Confirm call.
func (a *RedirectAdapter) serveReturnListener(returns chan<- redirectReturn) (net.Listener, func(), error) {
	ln, err := net.Listen("tcp", a.listenAddr)
	if err != nil {
		return nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/return", func(c *gin.Context) {
		status := c.Query("status")
		select {
		case returns <- redirectReturn{status: status}:
		default:
		}
		c.String(http.StatusOK, "Payment %s. You can close this window.", status)
	})

	srv := &http.Server{Handler: r}
	go func() {
		_ = srv.Serve(ln)
	}()
	stop := func() { _ = srv.Close() }
	return ln, stop, nil
}
