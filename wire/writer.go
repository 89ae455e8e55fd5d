package wire

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xDarkicex/axiomsat/core"
	"github.com/xDarkicex/axiomsat/sat"
)

// Template formats one output line with the `#` (model counter) and `\n`
// (newline) placeholders from the external-interfaces design. The defaults
// below reproduce the classic DIMACS-style s/v/o lines.
type Template struct {
	Status      string // e.g. "s #\n"
	Model       string // e.g. "v #\n"
	Cost        string // e.g. "o #\n"
	ModelsNone  string // printed instead of Model when the search is exhausted with no model
	ModelsUnknown string // printed instead of Model when the search was interrupted

	// BitModel renders the model as a dense "01…" string instead of
	// signed literals, when no display strings are registered.
	BitModel bool
	// SuppressIDs drops variable ids from the model line entirely when no
	// display strings are registered (only Status/Cost print).
	SuppressIDs bool
}

// DefaultTemplate matches the spec's default DIMACS-style output.
var DefaultTemplate = Template{
	Status:        "s #\n",
	Model:         "v #\n",
	Cost:          "o #\n",
	ModelsNone:    "s UNSATISFIABLE\n",
	ModelsUnknown: "s UNKNOWN\n",
}

func (t Template) render(line string, value string) string {
	line = strings.ReplaceAll(line, "#", value)
	line = strings.ReplaceAll(line, `\n`, "\n")
	return line
}

// WriteStatus writes the `s` status line for a Status value.
func WriteStatus(w io.Writer, t Template, status core.Status) {
	io.WriteString(w, t.render(t.Status, status.String()))
}

// WriteCost writes the `o` cost line.
func WriteCost(w io.Writer, t Template, cost int64) {
	io.WriteString(w, t.render(t.Cost, strconv.FormatInt(cost, 10)))
}

// WriteModel writes the `v` model line, translating Lit back into the
// wire format's 1-based signed-integer convention and substituting any
// registered display strings.
func WriteModel(w io.Writer, t Template, model []sat.LBool, displays map[sat.Var]string) {
	if len(displays) == 0 && t.SuppressIDs {
		return
	}
	if len(displays) == 0 && t.BitModel {
		var sb strings.Builder
		for _, val := range model {
			if val == sat.LTrue {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		io.WriteString(w, t.render(t.Model, sb.String()))
		return
	}
	var sb strings.Builder
	for v, val := range model {
		if val == sat.LUndef {
			continue
		}
		if text, ok := displays[sat.Var(v)]; ok {
			if val == sat.LTrue {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
			continue
		}
		if len(displays) > 0 {
			continue
		}
		n := v + 1
		if val == sat.LFalse {
			sb.WriteString(fmt.Sprintf("-%d ", n))
		} else {
			sb.WriteString(fmt.Sprintf("%d ", n))
		}
	}
	sb.WriteString("0")
	io.WriteString(w, t.render(t.Model, sb.String()))
}

// WriteModelsNone writes the no-model-found line for an exhausted search.
func WriteModelsNone(w io.Writer, t Template) {
	io.WriteString(w, t.ModelsNone)
}

// WriteModelsUnknown writes the interrupted-search line.
func WriteModelsUnknown(w io.Writer, t Template) {
	io.WriteString(w, t.ModelsUnknown)
}

// WriteOptimumFound writes the terminal "OPTIMUM FOUND" comment line.
func WriteOptimumFound(w io.Writer) {
	io.WriteString(w, "c OPTIMUM FOUND\n")
}

// WriteEndOfStream writes the bare `v` end-of-stream marker top-k
// enumeration ends with.
func WriteEndOfStream(w io.Writer) {
	io.WriteString(w, "v\n")
}
