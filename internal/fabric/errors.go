package fabric

import "errors"

// Every failure mode of the parsing pipeline is a distinct, named error
// kind. Parsers wrap these with file/line context via fmt.Errorf and %w,
// so callers can test the kind with errors.Is while still seeing where the
// input went wrong. All parsers fail fast: no partial model is ever
// returned alongside an error.
var (
	ErrMissingSection            = errors.New("missing section")
	ErrUnknownEntryKind          = errors.New("unknown entry kind")
	ErrDuplicateCarryDeclaration = errors.New("duplicate carry chain declaration")
	ErrInvalidCarryDirection     = errors.New("carry cannot be used with INOUT ports")
	ErrDuplicateCarryPort        = errors.New("duplicate carry port")
	ErrConfigBitCountMismatch    = errors.New("config bit count mismatch")
	ErrMalformedExpression       = errors.New("malformed expression")
	ErrInvalidListLine           = errors.New("invalid list line")
	ErrTileNameMismatch          = errors.New("tile name mismatch")
	ErrCapacityExceeded          = errors.New("switch matrix capacity exceeded")
	ErrCarryPortCountMismatch    = errors.New("carry port count mismatch")
	ErrFrameCountMismatch        = errors.New("frame count mismatch")
	ErrMaskWidthMismatch         = errors.New("mask width mismatch")
	ErrMaskOverflow              = errors.New("mask overflow")
	ErrDuplicateBitAllocation    = errors.New("duplicate bit allocation")
	ErrGlobalBitCountMismatch    = errors.New("global bit count mismatch")
	ErrUnknownParameter          = errors.New("unknown parameter")
	ErrUnknownTileReference      = errors.New("unknown tile reference")
	ErrDimensionMismatch         = errors.New("dimension mismatch")
)
