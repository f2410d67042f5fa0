package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"photodrop/internal/domain"
	"photodrop/internal/gateway"
	"photodrop/internal/modules/checkout"
	"photodrop/internal/modules/inventory"
	"photodrop/internal/modules/payment"
	"photodrop/internal/repository"
	"photodrop/internal/session"
)

type fakeBackend struct {
	mu           sync.Mutex
	albums       []domain.Album
	clientSecret string
	intentBodies []map[string]interface{}
}

func (b *fakeBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authed := func(c *gin.Context) bool {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return false
		}
		return true
	}

	r.GET("/client/images", func(c *gin.Context) {
		if !authed(c) {
			return
		}
		c.JSON(http.StatusOK, b.albums)
	})
	r.POST("/client/payment", func(c *gin.Context) {
		if !authed(c) {
			return
		}
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
			return
		}
		b.mu.Lock()
		b.intentBodies = append(b.intentBodies, body)
		b.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"clientSecret": b.clientSecret})
	})
	return r
}

type fixture struct {
	backend  *fakeBackend
	gateway  *gateway.Fake
	sheet    *payment.ChannelSheet
	receipts *repository.ReceiptRepository
	service  *checkout.Service
	session  *session.Session
}

func setup(t *testing.T) *fixture {
	t.Helper()

	backend := &fakeBackend{
		albums: []domain.Album{
			{Location: "Album One", Photos: []domain.Photo{
				{ID: 1, IsPurchased: false},
				{ID: 2, IsPurchased: true},
				{ID: 3, IsPurchased: false},
			}},
		},
		clientSecret: "pi_e2e_secret_abc",
	}
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)

	dsn := fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to open sqlite db")
	require.NoError(t, db.AutoMigrate(&domain.PaymentReceipt{}))

	gw := gateway.NewFake()
	sheet := payment.NewChannelSheet()
	intents := payment.NewIntentClient(srv.URL, nil)
	receipts := repository.NewReceiptRepository(db)

	adapters := []payment.Adapter{
		payment.NewWalletAdapter(intents, gw, sheet, "usd", nil),
		payment.NewCardAdapter(intents, gw, func(context.Context) (string, error) { return "pm_card_e2e", nil }, "usd", nil),
	}
	svc := checkout.NewService(inventory.NewService(srv.URL, nil), receipts, adapters, 100, "usd", nil)

	claims := jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwtlib.NewNumericDate(time.Now()),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("e2e-secret"))
	require.NoError(t, err)

	return &fixture{
		backend:  backend,
		gateway:  gw,
		sheet:    sheet,
		receipts: receipts,
		service:  svc,
		session:  session.New(token),
	}
}

func (f *fixture) tapWallet(token string) {
	go func() {
		for i := 0; i < 200; i++ {
			if f.sheet.Authorize(token) {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func TestWalletCheckoutEndToEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cs, err := f.service.Open(ctx, checkout.OpenParams{
		AlbumKey:            "Album%20One",
		ForceAllPhotos:      true,
		AlbumDetailsContext: true,
	}, f.session)
	require.NoError(t, err)
	defer cs.Close()

	quote := cs.Quote()
	assert.Equal(t, 2, quote.PhotoCount, "album has two unpaid photos")
	assert.Equal(t, int64(200), quote.TotalMinor)

	f.tapWallet("pm_wallet_e2e")
	handoff, err := cs.Commit(ctx, domain.PaymentMethodExpressWallet, f.session)
	require.NoError(t, err)

	assert.Equal(t, checkout.StateSucceeded, cs.State())
	assert.Equal(t, []domain.PhotoID{1, 3}, handoff.ImageIDs)
	assert.Equal(t, int64(200), handoff.Price)
	assert.Equal(t, domain.PaymentMethodExpressWallet, handoff.PaymentMethod)

	// The wallet rides the card rails and never ships photo ids to the
	// intent endpoint; the backend derives pricing authority itself.
	require.Len(t, f.backend.intentBodies, 1)
	body := f.backend.intentBodies[0]
	assert.Equal(t, "card", body["paymentMethodType"])
	assert.Equal(t, "usd", body["currency"])
	assert.Equal(t, float64(200), body["amount"])
	assert.NotContains(t, body, "imageIds")

	// The durable receipt matches the gateway outcome.
	receipt, err := f.receipts.GetByIntentRef(ctx, "pi_e2e")
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatusSucceeded, receipt.Status)
	assert.Equal(t, "1,3", receipt.ImageIDs)
	assert.Equal(t, int64(200), receipt.AmountMinor)
}

func TestIncompleteWalletFallsBackToCard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.gateway.StatusBySecret["pi_e2e_secret_abc"] = gateway.IntentStatusRequiresAction

	cs, err := f.service.Open(ctx, checkout.OpenParams{
		AlbumKey:            "Album One",
		PhotoIDs:            []domain.PhotoID{3},
		AlbumDetailsContext: true,
	}, f.session)
	require.NoError(t, err)
	defer cs.Close()

	f.tapWallet("pm_wallet_e2e")
	_, err = cs.Commit(ctx, domain.PaymentMethodExpressWallet, f.session)
	require.ErrorIs(t, err, payment.ErrIncompleteIntent)
	assert.Equal(t, checkout.StateQuoting, cs.State(), "session must return to Quoting for a retry")
	assert.NotEmpty(t, cs.LastFailure())

	// Retry with the card instrument once the gateway behaves.
	delete(f.gateway.StatusBySecret, "pi_e2e_secret_abc")
	handoff, err := cs.Commit(ctx, domain.PaymentMethodCard, f.session)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodCard, handoff.PaymentMethod)
	assert.Equal(t, int64(100), handoff.Price)
	assert.Equal(t, "pm_card_e2e", f.gateway.LastToken)

	// Both attempts are journaled: one failed, one succeeded.
	pending, err := f.service.PendingReceipts(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "no attempt may stay unresolved")
}

func TestWalletUnavailableIsCapabilityNegative(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.gateway.WalletEnabled = false

	cs, err := f.service.Open(ctx, checkout.OpenParams{
		AlbumKey:       "Album One",
		ForceAllPhotos: true,
	}, f.session)
	require.NoError(t, err)
	defer cs.Close()

	_, err = cs.Commit(ctx, domain.PaymentMethodExpressWallet, f.session)
	require.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	assert.Equal(t, checkout.StateQuoting, cs.State())
	assert.Zero(t, f.gateway.ConfirmCalls, "capability-negative probe must not reach confirmation")

	// Fallback instrument completes the same session.
	handoff, err := cs.Commit(ctx, domain.PaymentMethodCard, f.session)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodCard, handoff.PaymentMethod)
}
