//go:build wasip1

// Command gamescript-wasm-wasi is the WASI (wasip1) entrypoint for use from
// any language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "source": "<program>", "ext": true }
//	stdout: { "result": "<value text>", "value": <JSON value> }   on success
//	        { "error":  "<message>" }                              on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gamescript.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"source":"(fold + 0 [1 2 3])"}' | wasmtime gamescript.wasm
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	gamescript "github.com/k-stachowiak/game-script-sub000"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

type request struct {
	Source string `json:"source"`
	// Ext registers the static extension packs.
	Ext bool `json:"ext"`
}

type response struct {
	Result string           `json:"result,omitempty"`
	Value  *functions.Value `json:"value,omitempty"`
	Output string           `json:"output,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	// print output is collected so that stdout carries a single JSON object
	var out bytes.Buffer
	opts := []gamescript.EvalOption{gamescript.WithOutput(&out)}
	if req.Ext {
		opts = append(opts, ext.WithAll())
	}

	res, err := gamescript.EvalWithContext(context.Background(), req.Source, opts...)
	if err != nil {
		writeResponse(response{Error: err.Error(), Output: out.String()}, 1)
	}

	writeResponse(response{Result: res.Text, Value: &res.Value, Output: out.String()}, 0)
}
