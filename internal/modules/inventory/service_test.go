package inventory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"

	"photodrop/internal/domain"
	"photodrop/internal/session"
)

func testToken(t *testing.T) string {
	t.Helper()
	claims := jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwtlib.NewNumericDate(time.Now()),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func newInventoryServer(t *testing.T, albums []domain.Album) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/client/images", func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		c.JSON(http.StatusOK, albums)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolvePartitionsUnpaidPhotos(t *testing.T) {
	srv := newInventoryServer(t, []domain.Album{
		{Location: "A", Photos: []domain.Photo{
			{ID: 1, IsPurchased: false},
			{ID: 2, IsPurchased: true},
			{ID: 3, IsPurchased: false},
		}},
	})
	svc := NewService(srv.URL, nil)

	result, err := svc.Resolve(context.Background(), "A", session.New(testToken(t)))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !result.AlbumFound {
		t.Fatalf("expected album to be found")
	}
	if result.UnpaidCount != 2 {
		t.Fatalf("expected 2 unpaid photos, got %d", result.UnpaidCount)
	}
	if result.UnpaidIDs[0] != 1 || result.UnpaidIDs[1] != 3 {
		t.Fatalf("expected unpaid ids [1 3] in original order, got %v", result.UnpaidIDs)
	}
}

func TestResolveDecodesAlbumKey(t *testing.T) {
	srv := newInventoryServer(t, []domain.Album{
		{Location: "Album One", Photos: []domain.Photo{{ID: 7, IsPurchased: false}}},
	})
	svc := NewService(srv.URL, nil)

	result, err := svc.Resolve(context.Background(), "Album%20One", session.New(testToken(t)))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !result.AlbumFound || result.UnpaidCount != 1 {
		t.Fatalf("expected decoded key to match stored location, got %+v", result)
	}
}

func TestResolveMissingAlbumIsEmptyNotError(t *testing.T) {
	srv := newInventoryServer(t, []domain.Album{
		{Location: "A", Photos: []domain.Photo{{ID: 1, IsPurchased: false}}},
	})
	svc := NewService(srv.URL, nil)

	result, err := svc.Resolve(context.Background(), "B", session.New(testToken(t)))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.AlbumFound {
		t.Fatalf("expected AlbumFound=false for missing album")
	}
	if result.UnpaidCount != 0 || len(result.UnpaidIDs) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestResolveRequiresToken(t *testing.T) {
	srv := newInventoryServer(t, nil)
	svc := NewService(srv.URL, nil)

	_, err := svc.Resolve(context.Background(), "A", session.New(""))
	if !errors.Is(err, session.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestResolveServiceFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/client/images", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	svc := NewService(srv.URL, nil)

	_, err := svc.Resolve(context.Background(), "A", session.New(testToken(t)))
	if !errors.Is(err, ErrInventoryUnavailable) {
		t.Fatalf("expected ErrInventoryUnavailable, got %v", err)
	}
}
