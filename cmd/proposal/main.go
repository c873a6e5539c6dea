package main

import (
	"os"
	"strings"

	"proposal-cli/internal/cli"
)

func isBlockID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "blk-") && len(s) > len("blk-")
}

// rewriteBlockLookupArgs turns `proposal <block-id>` into
// `proposal blocks show <block-id>`. Cobra reads the first positional token
// as a subcommand, so argv is rewritten before parsing. Persistent flags may
// come first.
func rewriteBlockLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--workspace": true,
		"--backend":   true,
		"--format":    true,
		"--log-level": true,
	}

	insertAt := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "blocks", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isBlockID(argv[i+1]) {
				return insertAt(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isBlockID(a):
			return insertAt(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteBlockLookupArgs(os.Args)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
