package engine

import "github.com/ardnew/prex/lang"

// Predefined errors (sentinel values).
var (
	ErrUnbalanced       = lang.NewError("unbalanced delimiter")
	ErrUnterminated     = lang.NewError("unterminated region")
	ErrQuoteHeader      = lang.NewError("invalid quote header")
	ErrExecute          = lang.NewError("exception in code")
	ErrInclude          = lang.NewError("include failed")
	ErrMaxDepthExceeded = lang.NewError("maximum include depth exceeded")
	ErrReadInput        = lang.NewError("read input")
	ErrWriteOutput      = lang.NewError("write output")
	ErrInvalidMode      = lang.NewError("invalid mode")
)
