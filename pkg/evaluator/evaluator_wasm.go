//go:build (js && wasm) || wasip1

package evaluator

// init sets WebAssembly-specific defaults for all Evaluators created in this
// process.
//
// Evaluation recurses on the Go stack once per nested node. On js/wasm and
// wasip1 the goroutine stack limit is reached much earlier than on native
// targets, so deep user recursion would crash the module instead of failing
// with ErrMaxDepth.
func init() {
	defaultMaxDepth = 2000
}
