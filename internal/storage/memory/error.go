package memory

import "errors"

var (
	ErrMissingID          = errors.New("missing id")
	ErrUnknownProperty    = errors.New("unknown property")
	ErrUnknownSite        = errors.New("unknown site")
	ErrUnsupportedSortKey = errors.New("unsupported sort field")
)
