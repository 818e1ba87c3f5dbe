package vectro

import "errors"

// Sentinel errors returned by the engine. Callers should match them with
// errors.Is since most call sites wrap them with additional context.
var (
	// ErrDimensionMismatch is returned when a vector's length disagrees with
	// the fixed dimensionality established by the dataset or index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyDataset is returned when an index build or an analysis is
	// attempted over zero vectors.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrInvalidArgument is returned for out-of-range numeric parameters such
	// as a non-positive top-k, sample count, or run count.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotImplemented is returned by the index persistence placeholders.
	// Datasets persist; built indices do not.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnknownCodecKind is returned when an unknown codec kind is provided
	// to NewQuantizer or NewQuantizedIndex.
	ErrUnknownCodecKind = errors.New("unknown codec kind")

	// ErrUnknownTheme is returned by GenerateThemedEmbeddings for a theme it
	// does not recognize.
	ErrUnknownTheme = errors.New("unknown theme")
)
