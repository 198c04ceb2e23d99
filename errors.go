package nativeload

import (
	"errors"
	"fmt"

	"github.com/oshokin/nativeload/internal/digest"
	"github.com/oshokin/nativeload/internal/dynload"
	"github.com/oshokin/nativeload/internal/extractor"
	"github.com/oshokin/nativeload/internal/resource"
)

// Stage-specific errors. Match them with errors.Is.
var (
	// ErrResourceNotFound means the bundle has no library for the name and platform.
	ErrResourceNotFound = resource.ErrNotFound
	// ErrExtractionIO means copying the library to the scratch directory failed.
	ErrExtractionIO = extractor.ErrIO
	// ErrExtractionCorrupted means the scratch copy differed from the bundle.
	ErrExtractionCorrupted = extractor.ErrCorrupted
	// ErrLinkage means the OS loader rejected the verified copy.
	ErrLinkage = dynload.ErrLinkage
	// ErrAlgorithmUnavailable means the configured digest algorithm is not supported.
	ErrAlgorithmUnavailable = digest.ErrAlgorithmUnavailable
)

// Facade-level errors.
var (
	// ErrNativeLibraryNotFound is reported when the bundle lacks the library.
	ErrNativeLibraryNotFound = errors.New("native library not found")
	// ErrNativeLibraryLoadFailed is reported when extraction or loading failed.
	ErrNativeLibraryLoadFailed = errors.New("native library load failed")
)

// Stage names the pipeline step that failed.
type Stage string

// Pipeline stages.
const (
	StageLocate  Stage = "locate"
	StageExtract Stage = "extract"
	StageLoad    Stage = "load"
)

// Error is returned by LoadLibrary.
type Error struct {
	// Stage is the failing step.
	Stage Stage
	// Name is the requested library.
	Name string
	// Path is the bundle path or scratch file involved, when known.
	Path string
	// Err is the underlying failure.
	Err error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s %q: %v", e.Stage, e.Name, e.Err)
	}

	return fmt.Sprintf("%s %q (%s): %v", e.Stage, e.Name, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match the facade categories without caring about the stage error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNativeLibraryNotFound:
		return e.Stage == StageLocate
	case ErrNativeLibraryLoadFailed:
		return e.Stage == StageExtract || e.Stage == StageLoad
	default:
		return false
	}
}
