package broadphase

import "errors"

var (
	// ErrTableSizeMismatch is returned when two grids with different table
	// sizes are swept together. Bucket indices would not refer to the same
	// cells, so the sweep is refused.
	ErrTableSizeMismatch = errors.New("broadphase: grids have different table sizes")

	// ErrSettingsMismatch is returned when two grids with different cell
	// sizes or alarm distances are swept together.
	ErrSettingsMismatch = errors.New("broadphase: grids have different settings")

	// ErrNotInitialized is returned by operations on a grid without a table.
	ErrNotInitialized = errors.New("broadphase: grid not initialized")

	// ErrInvalidSettings is returned for a non-positive cell size or a
	// negative alarm distance.
	ErrInvalidSettings = errors.New("broadphase: invalid settings")

	// ErrNilModel is returned when a grid is created without a model.
	ErrNilModel = errors.New("broadphase: nil model")
)
