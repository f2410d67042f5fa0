package inventory

import "errors"

var ErrInventoryUnavailable = errors.New("inventory service unavailable")
