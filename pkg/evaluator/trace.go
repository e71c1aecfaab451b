package evaluator

import (
	"fmt"
	"io"
	"strings"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// TraceHooks are called on entry to and exit from every node evaluation.
// Either hook may be nil.
type TraceHooks struct {
	Enter func(node *types.Node, depth int)
	// Exit receives the result handle when ok is true. The handle is only
	// valid for the duration of the call.
	Exit func(node *types.Node, a *arena.Arena, h arena.Handle, ok bool, depth int)
}

// NewIndentTracer returns hooks that write one indented line per node entry
// and exit to w.
func NewIndentTracer(w io.Writer) TraceHooks {
	return TraceHooks{
		Enter: func(node *types.Node, depth int) {
			fmt.Fprintf(w, "%s> %s %s\n", strings.Repeat("  ", depth-1), node.Type, node.Loc)
		},
		Exit: func(node *types.Node, a *arena.Arena, h arena.Handle, ok bool, depth int) {
			indent := strings.Repeat("  ", depth-1)
			if !ok {
				fmt.Fprintf(w, "%s< %s failed\n", indent, node.Type)
				return
			}
			fmt.Fprintf(w, "%s< %s = %s\n", indent, node.Type, a.Format(h))
		},
	}
}
