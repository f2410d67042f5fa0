package inventory

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"

	"photodrop/internal/domain"
	"photodrop/internal/session"
)

// Result is the candidate set of purchasable photos for one album.
// AlbumFound lets callers tell "zero owed" apart from "no such album";
// a fetch failure never reaches this struct.
type Result struct {
	AlbumFound  bool
	UnpaidIDs   []domain.PhotoID
	UnpaidCount int
}

type Service struct {
	http    *resty.Client
	loggerf func(format string, args ...interface{})
}

func NewService(baseURL string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		http:    resty.New().SetBaseURL(baseURL),
		loggerf: loggerf,
	}
}

// Resolve fetches the caller's albums and partitions the matching album's
// photos into paid and unpaid. The album key arrives straight from a
// navigational context, so it is URL-decoded before comparison against
// stored locations. Read-only and safe to retry.
func (s *Service) Resolve(ctx context.Context, albumLocationKey string, sess *session.Session) (*Result, error) {
	token, err := sess.Token()
	if err != nil {
		return nil, err
	}

	decoded, err := url.PathUnescape(albumLocationKey)
	if err != nil {
		decoded = albumLocationKey
	}

	var albums []domain.Album
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&albums).
		Get("/client/images")
	if err != nil {
		s.loggerf("level=error msg=inventory fetch failed album=%s err=%v", decoded, err)
		return nil, fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
	}
	if resp.IsError() {
		s.loggerf("level=error msg=inventory fetch rejected album=%s status=%d", decoded, resp.StatusCode())
		return nil, fmt.Errorf("%w: status %d", ErrInventoryUnavailable, resp.StatusCode())
	}

	for _, album := range albums {
		if album.Location != decoded {
			continue
		}
		result := &Result{AlbumFound: true}
		for _, photo := range album.Photos {
			if !photo.IsPurchased {
				result.UnpaidIDs = append(result.UnpaidIDs, photo.ID)
			}
		}
		result.UnpaidCount = len(result.UnpaidIDs)
		return result, nil
	}

	s.loggerf("level=info msg=album not found album=%s", decoded)
	return &Result{}, nil
}
