package editor

// Settings tunes tool behaviour. Distances marked as pixels are divided by
// the view scale before use.
type Settings struct {
	// MinSizeThreshold is the drag distance below which a creation gesture
	// counts as a click and gets the default size.
	MinSizeThreshold float64
	DefaultWidth     float64
	DefaultHeight    float64
	// MinSize is the smallest width or height a resize or creation may
	// leave a figure with.
	MinSize float64
	// CloseTolerance is how near, in pixels, a click must land to the first
	// bezier node to close the path.
	CloseTolerance float64
	// HitTolerance is the hit slop in pixels.
	HitTolerance float64
	// HandleSize is the side of a handle square in pixels.
	HandleSize      float64
	UndoLimit       int
	DuplicateOffset float64
	// FitError is the maximum curve fitting error in pixels.
	FitError float64
}

func DefaultSettings() Settings {
	return Settings{
		MinSizeThreshold: 2,
		DefaultWidth:     40,
		DefaultHeight:    40,
		MinSize:          1,
		CloseTolerance:   4,
		HitTolerance:     3,
		HandleSize:       7,
		UndoLimit:        200,
		DuplicateOffset:  10,
		FitError:         1.5,
	}
}
