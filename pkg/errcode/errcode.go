package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Store errors
	StoreConnectionError
	StoreSchemaError
	StoreUnavailableError
	StoreUnknownTypeError
	IndexCorruptionError

	// Input errors
	InputError
	TSVHeaderError

	// Cache errors
	CacheFileError
	CacheLoadError

	// Enrichment errors
	EnrichmentServiceError
	AllEnrichersFailedError
	EnricherUnknownError

	// Resolution errors
	ResolutionConflictError
	ResolveCanceledError

	// Corrections errors
	CorrectionsFileError

	// Metrics errors
	MetricsWriteError
)
