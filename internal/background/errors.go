package background

import "errors"

// ErrStoreLinks is returned when detected links cannot be persisted
var ErrStoreLinks = errors.New("failed to store detected links")
