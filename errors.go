package vcardtool

import (
	"github.com/simonhull/vcardtool/internal/types"
)

// DecodeError is an alias to types.DecodeError.
// Re-exporting from internal/types to maintain public API.
type DecodeError = types.DecodeError

// StructuralError is an alias to types.StructuralError.
// Re-exporting from internal/types to maintain public API.
type StructuralError = types.StructuralError

// UnsupportedEncodingError is an alias to types.UnsupportedEncodingError.
// Re-exporting from internal/types to maintain public API.
type UnsupportedEncodingError = types.UnsupportedEncodingError

// Warning is an alias to types.Warning.
// Re-exporting from internal/types to maintain public API.
type Warning = types.Warning

// Sentinel causes wrapped by StructuralError.
var (
	ErrUnbalanced   = types.ErrUnbalanced
	ErrMissingFN    = types.ErrMissingFN
	ErrStrayContent = types.ErrStrayContent
)
