package docs

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

var (
	rendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided: it can block on terminal queries.
	renderers = map[string]*glamour.TermRenderer{}
)

// Style returns "light" or "dark" from MOTIONLINE_TUI_MD_STYLE (dark by default).
func Style() string {
	if strings.ToLower(strings.TrimSpace(os.Getenv("MOTIONLINE_TUI_MD_STYLE"))) == "light" {
		return "light"
	}
	return "dark"
}

func styleConfig(name string) ansi.StyleConfig {
	if name == "light" {
		return styles.LightStyleConfig
	}
	return styles.DarkStyleConfig
}

// Render renders markdown for a terminal of the given width without the document margin.
func Render(md string, width int) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	if width < 10 {
		width = 10
	}

	style := Style()
	key := style + ":" + strconv.Itoa(width)

	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		cfg := styleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return "", err
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
