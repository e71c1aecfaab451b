package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
	"github.com/k-stachowiak/game-script-sub000/pkg/parser"
)

func runREPL(ctx context.Context, ev *evaluator.Evaluator) error {
	home, _ := os.UserHomeDir()
	histPath := ""
	if home != "" {
		histPath = filepath.Join(home, ".gamescript_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "gs> ",
		HistoryFile:       histPath,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("gamescript REPL, :help for commands, :quit to exit.")
	fmt.Println("Unbalanced input continues on the next line.")
	fmt.Println()

	var buf strings.Builder
	chunk := 0

	for {
		if buf.Len() > 0 {
			rl.SetPrompt("... ")
		} else {
			rl.SetPrompt("gs> ")
		}

		line, err := rl.Readline()

		// Ctrl+C
		if errors.Is(err, readline.ErrInterrupt) {
			if buf.Len() > 0 {
				buf.Reset()
				fmt.Println("^C (buffer cleared)")
			}
			continue
		}

		// Ctrl+D
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		trim := strings.TrimSpace(line)
		if buf.Len() == 0 && strings.HasPrefix(trim, ":") {
			quit, cmdErr := handleREPLCommand(trim, ev)
			if cmdErr != nil {
				fmt.Fprintln(os.Stderr, cmdErr.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		src := buf.String()
		if strings.TrimSpace(src) == "" {
			buf.Reset()
			continue
		}
		if depth(src) > 0 {
			continue
		}
		buf.Reset()

		chunk++
		res, err := ev.EvalSource(ctx, src, parser.WithSourceName(fmt.Sprintf("<repl:%d>", chunk)))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println(res.Text)
	}
}

// depth returns the number of unclosed brackets in src, skipping strings,
// chars and comments. It only decides whether to keep reading; the parser
// reports real syntax errors.
func depth(src string) int {
	d := 0
	inString, inChar, inComment, escaped := false, false, false, false
	for _, r := range src {
		switch {
		case inComment:
			inComment = r != '\n'
		case escaped:
			escaped = false
		case inString || inChar:
			switch {
			case r == '\\':
				escaped = true
			case inString && r == '"':
				inString = false
			case inChar && r == '\'':
				inChar = false
			}
		case r == ';':
			inComment = true
		case r == '"':
			inString = true
		case r == '\'':
			inChar = true
		case r == '(' || r == '[' || r == '{':
			d++
		case r == ')' || r == ']' || r == '}':
			d--
		}
	}
	if inString {
		return d + 1
	}
	return d
}

func handleREPLCommand(cmd string, ev *evaluator.Evaluator) (quit bool, err error) {
	switch {
	case cmd == ":q" || cmd == ":quit" || cmd == ":exit":
		return true, nil

	case cmd == ":h" || cmd == ":help":
		fmt.Println("Commands:")
		fmt.Println("  :help              Show this help")
		fmt.Println("  :quit              Exit the REPL")
		fmt.Println("  :vars              Show global bindings made in this session")
		fmt.Println("  :builtins          Show built-in and foreign functions")
		fmt.Println("  :load <file>       Evaluate a file in this session")
		fmt.Println("  :reset             Drop every global binding")
		fmt.Println("  :arena             Show arena usage")
		fmt.Println()
		fmt.Println("Notes:")
		fmt.Println("  - Global bindings persist across lines and cannot be rebound; use :reset.")
		return false, nil

	case cmd == ":vars" || cmd == ":builtins":
		builtins := cmd == ":builtins"
		g := ev.Global()
		n := 0
		for _, name := range g.Names() {
			b, _ := g.Find(name)
			if isBuiltin(b.Loc.Source) != builtins {
				continue
			}
			n++
			if builtins {
				fmt.Println(name)
				continue
			}
			fmt.Printf("%s = %s\n", name, ev.Arena().Format(b.Handle))
		}
		if n == 0 {
			fmt.Println("(none)")
		}
		return false, nil

	case strings.HasPrefix(cmd, ":load "):
		path := strings.TrimSpace(strings.TrimPrefix(cmd, ":load "))
		src, err := os.ReadFile(path)
		if err != nil {
			return false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		res, err := ev.EvalSource(context.Background(), string(src), parser.WithSourceName(path))
		if err != nil {
			return false, err
		}
		fmt.Println(res.Text)
		return false, nil

	case cmd == ":reset":
		ev.Reset()
		fmt.Println("(global scope cleared)")
		return false, nil

	case cmd == ":arena":
		a := ev.Arena()
		fmt.Printf("top=%d capacity=%d globals=%d\n", a.Top(), a.Cap(), ev.Global().Len())
		return false, nil

	default:
		fmt.Println("Unknown command. Try :help")
		return false, nil
	}
}

func isBuiltin(source string) bool {
	return source == "<builtin>" || source == "<foreign>"
}
