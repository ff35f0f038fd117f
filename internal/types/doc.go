// Package types provides the core data structures shared by the vCard
// conversion and merge pipelines.
//
// This package defines PropertyGroup, the target Version, the error taxonomy
// (DecodeError, StructuralError, UnsupportedEncodingError) and Warning.
package types
