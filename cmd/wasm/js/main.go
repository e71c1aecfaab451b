//go:build js && wasm

// Command gamescript-wasm-js is the WebAssembly entrypoint for browser and
// Node.js.
//
// It exposes a global `gamescript` object with the following API:
//
//	gamescript.version()          → string
//	gamescript.eval(source)       → resultJSON  (throws on error)
//	gamescript.session()          → { eval(source) → resultJSON }  (throws on error)
//
// A session keeps its global bindings between eval calls. Results are
// `{"result": "<value text>", "value": <JSON value>}`.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o gamescript.wasm ./cmd/wasm/js/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"syscall/js"

	gamescript "github.com/k-stachowiak/game-script-sub000"
	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext"
)

type result struct {
	Result string      `json:"result"`
	Value  interface{} `json:"value"`
}

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

func encode(where string, res *evaluator.Result) string {
	out, err := json.Marshal(result{Result: res.Text, Value: res.Value})
	if err != nil {
		jsThrow(fmt.Sprintf("%s: marshal result: %v", where, err))
	}
	return string(out)
}

// jsEval implements gamescript.eval(source) → resultJSON.
func jsEval(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("gamescript.eval requires 1 argument: source (string)")
	}
	res, err := gamescript.EvalWithContext(context.Background(), args[0].String(),
		gamescript.WithOutput(io.Discard), ext.WithAll())
	if err != nil {
		jsThrow(fmt.Sprintf("gamescript.eval: %v", err))
	}
	return encode("gamescript.eval", res)
}

// jsSession implements gamescript.session() → { eval(source) → resultJSON }.
func jsSession(_ js.Value, _ []js.Value) interface{} {
	ev := gamescript.NewEvaluator(gamescript.WithOutput(io.Discard), ext.WithAll())

	evalFn := js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			jsThrow("session.eval requires 1 argument: source (string)")
		}
		res, err := ev.EvalSource(context.Background(), args[0].String())
		if err != nil {
			jsThrow(fmt.Sprintf("session.eval: %v", err))
		}
		return encode("session.eval", res)
	})

	return js.ValueOf(map[string]interface{}{"eval": evalFn})
}

func main() {
	api := map[string]interface{}{
		"eval":    js.FuncOf(jsEval),
		"session": js.FuncOf(jsSession),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return gamescript.Version()
		}),
	}
	js.Global().Set("gamescript", js.ValueOf(api))

	// Block forever: the JS event loop owns execution from here.
	select {}
}
