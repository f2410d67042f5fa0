package selection

import "errors"

var ErrEmptySelection = errors.New("selection contains no photos")
