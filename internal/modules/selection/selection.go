package selection

import "photodrop/internal/domain"

type Kind string

const (
	KindSinglePhoto Kind = "single_photo"
	KindAllUnpaid   Kind = "all_unpaid"
)

// Mode is the active purchase selection. Exactly one kind is active at a
// time; PhotoIDs holds the single id or the full unpaid set.
type Mode struct {
	Kind     Kind
	PhotoIDs []domain.PhotoID
}

func SinglePhoto(id domain.PhotoID) Mode {
	return Mode{Kind: KindSinglePhoto, PhotoIDs: []domain.PhotoID{id}}
}

func AllUnpaid(ids []domain.PhotoID) Mode {
	return Mode{Kind: KindAllUnpaid, PhotoIDs: ids}
}

// Quote is derived state, recomputed on every mode or inventory change and
// never cached. All amounts are integer minor units.
type Quote struct {
	UnitPriceMinor int64
	PhotoCount     int
	TotalMinor     int64
}

// DefaultMode applies the initialization precedence: a forced album-level
// unlock always selects all unpaid photos; otherwise a single explicit photo
// id selects just that photo; otherwise all unpaid.
func DefaultMode(forcedAllPhotos bool, explicitIDs []domain.PhotoID, unpaid []domain.PhotoID) Mode {
	if forcedAllPhotos {
		return AllUnpaid(unpaid)
	}
	if len(explicitIDs) == 1 {
		return SinglePhoto(explicitIDs[0])
	}
	return AllUnpaid(unpaid)
}

// OfferSwitchToAll reports whether the "all photos" option may be presented
// next to the single-photo one. Outside an album-details context only the
// single photo is offered, so a bare photo view cannot trigger a bulk buy.
func OfferSwitchToAll(isAlbumDetailsContext bool) bool {
	return isAlbumDetailsContext
}

func ComputeQuote(mode Mode, unitPriceMinor int64) Quote {
	count := len(mode.PhotoIDs)
	if mode.Kind == KindSinglePhoto && count > 1 {
		count = 1
	}
	return Quote{
		UnitPriceMinor: unitPriceMinor,
		PhotoCount:     count,
		TotalMinor:     unitPriceMinor * int64(count),
	}
}

// Validate rejects unpayable selections before any payment adapter is
// invoked. This is a local check, not a backend call.
func Validate(mode Mode) error {
	if len(mode.PhotoIDs) == 0 {
		return ErrEmptySelection
	}
	return nil
}
