package main

import (
	"os"
	"strings"

	"motionline/internal/cli"
)

// trackRef returns the track id of an "@<track-id>" token.
func trackRef(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@") || len(s) == 1 {
		return "", false
	}
	return s[1:], true
}

func rewriteDirectTrackLookupArgs(argv []string) []string {
	// Convenience: `motionline @<track-id>` works like `motionline tracks show <track-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
	// Persistent flags may come first (e.g. `motionline --dir ... @hips`), so we look for the
	// first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":    true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int, id string) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "tracks", "show", id)
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				if id, ok := trackRef(argv[i+1]); ok {
					return rewrite(i+1, id)
				}
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if id, ok := trackRef(a); ok {
			return rewrite(i, id)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectTrackLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
