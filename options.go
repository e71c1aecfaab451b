package gamescript

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
)

// EvalOption configures an evaluator. It is an alias of evaluator.EvalOption
// so options from both packages mix freely.
type EvalOption = evaluator.EvalOption

// Re-exported evaluator options.
var (
	WithCaching          = evaluator.WithCaching
	WithCacheSize        = evaluator.WithCacheSize
	WithCache            = evaluator.WithCache
	WithTimeout          = evaluator.WithTimeout
	WithDebug            = evaluator.WithDebug
	WithLogger           = evaluator.WithLogger
	WithMaxDepth         = evaluator.WithMaxDepth
	WithMaxSteps         = evaluator.WithMaxSteps
	WithForeignFunction  = evaluator.WithForeignFunction
	WithForeignFunctions = evaluator.WithForeignFunctions
	WithTraceHooks       = evaluator.WithTraceHooks
	WithOutput           = evaluator.WithOutput
	WithRandSeed         = evaluator.WithRandSeed
	WithArenaCapacity    = evaluator.WithArenaCapacity
)
