package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"photodrop/internal/config"
	"photodrop/internal/database"
	"photodrop/internal/domain"
	"photodrop/internal/gateway"
	"photodrop/internal/modules/checkout"
	"photodrop/internal/modules/inventory"
	"photodrop/internal/modules/payment"
	"photodrop/internal/repository"
	"photodrop/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	album := flag.String("album", "", "album location key (URL-encoded is fine)")
	photoID := flag.Int64("photo", 0, "single photo id to unlock (0 = all unpaid)")
	method := flag.String("method", "paypal", "payment method: card, express_wallet or paypal")
	allPhotos := flag.Bool("all", false, "force the album-level unlock (all unpaid photos)")
	flag.Parse()

	if *album == "" {
		log.Fatal("-album is required")
	}
	token := os.Getenv("PHOTODROP_AUTH_TOKEN")
	if token == "" {
		log.Fatal("PHOTODROP_AUTH_TOKEN is empty")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.ReceiptDB)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.PaymentReceipt{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	loggerf := log.Printf
	sess := session.New(token)
	receipts := repository.NewReceiptRepository(db)
	resolver := inventory.NewService(cfg.APIBaseURL, loggerf)
	intents := payment.NewIntentClient(cfg.APIBaseURL, loggerf)
	gw := gateway.NewStripeGateway(cfg.StripeSecretKey, cfg.WalletDomain, loggerf)
	sheet := payment.NewChannelSheet()

	adapters := []payment.Adapter{
		payment.NewWalletAdapter(intents, gw, sheet, cfg.Currency, loggerf),
		payment.NewCardAdapter(intents, gw, cardTokenFromEnv, cfg.Currency, loggerf),
		payment.NewRedirectAdapter(intents, cfg.PayPalBaseURL, cfg.RedirectListenAddr, cfg.Currency, printURL, loggerf),
	}

	svc := checkout.NewService(resolver, receipts, adapters, cfg.UnitPriceMinor, cfg.Currency, loggerf)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reportPending(ctx, svc)

	cs, err := svc.Open(ctx, checkout.OpenParams{
		AlbumKey:            *album,
		PhotoIDs:            explicitIDs(*photoID),
		ForceAllPhotos:      *allPhotos,
		AlbumDetailsContext: true,
	}, sess)
	if err != nil {
		log.Fatal(err)
	}
	defer cs.Close()

	quote := cs.Quote()
	fmt.Printf("Unlocking %d photo(s) for %s\n", quote.PhotoCount, formatMinor(quote.TotalMinor, cfg.Currency))

	handoff, err := cs.Commit(ctx, domain.PaymentMethod(*method), sess)
	if err != nil {
		log.Fatalf("checkout failed: %v (reason: %s)", err, cs.LastFailure())
	}

	fmt.Printf("Payment succeeded via %s: photos %v for %s\n",
		handoff.PaymentMethod, handoff.ImageIDs, formatMinor(handoff.Price, cfg.Currency))
}

func reportPending(ctx context.Context, svc *checkout.Service) {
	pending, err := svc.PendingReceipts(ctx)
	if err != nil {
		log.Printf("level=warn msg=could not list pending receipts err=%v", err)
		return
	}
	for _, r := range pending {
		log.Printf("level=warn msg=unresolved previous attempt receipt=%s intent=%s amount=%d", r.ID, r.IntentRef, r.AmountMinor)
	}
}

func explicitIDs(photoID int64) []domain.PhotoID {
	if photoID == 0 {
		return nil
	}
	return []domain.PhotoID{photoID}
}

func cardTokenFromEnv(context.Context) (string, error) {
	token := os.Getenv("PHOTODROP_CARD_TOKEN")
	if token == "" {
		return "", fmt.Errorf("PHOTODROP_CARD_TOKEN is empty")
	}
	return token, nil
}

func printURL(u string) error {
	fmt.Println("Open this URL to finish the payment:")
	fmt.Println("  " + u)
	return nil
}

func formatMinor(amount int64, currency string) string {
	major := strconv.FormatInt(amount/100, 10)
	cents := strconv.FormatInt(amount%100, 10)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return major + "." + cents + " " + strings.ToUpper(currency)
}
