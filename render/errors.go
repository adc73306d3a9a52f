package render

import "errors"

var (
	// ErrStaleFrame is returned by Frame methods once a newer frame has begun.
	ErrStaleFrame = errors.New("render: stale frame")

	// ErrBadRange is returned in strict mode for column ranges outside the view.
	ErrBadRange = errors.New("render: column range out of view")

	// ErrNoSurface is returned when a renderer is built without a surface.
	ErrNoSurface = errors.New("render: no surface")

	// ErrBadSeg is returned for segs without a front sector, side or line.
	ErrBadSeg = errors.New("render: incomplete seg")

	// ErrBadConfig wraps every Config validation failure.
	ErrBadConfig = errors.New("render: bad config")
)
