// Package stdimg: registry of the lookup-table transforms the command line
// can apply, plus the image collaborators around the lut core (codec,
// histogram counting and plotting).
//
// Keep Commands in sync with BuildTable in engine.go so help text and
// validation read from a single source of truth.

package stdimg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/Fepozopo/lutimg/pkg/lut"
)

// ArgSpec describes a single argument for a command.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int" or "float"
	Required    bool
	Default     string // textual default, used when the argument is omitted
	Description string
}

// CommandSpec defines a single transform and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
	// NeedsHistogram is set for transforms derived from the image statistics.
	NeedsHistogram bool
}

// Commands is the authoritative list of transforms implemented by BuildTable.
var Commands = []CommandSpec{
	{
		Name:        "brightness",
		Args:        []ArgSpec{{"offset", "int", true, "", "amount added to every intensity"}},
		Usage:       "brightness <offset>",
		Description: "Shift brightness, saturating at 0 and 255.",
	},
	{
		Name:           "contrast",
		Args:           []ArgSpec{{"scale", "float", true, "", "scale around the mean brightness (>= 0)"}},
		Usage:          "contrast <scale>",
		Description:    "Scale contrast around the mean brightness.",
		NeedsHistogram: true,
	},
	{
		Name:        "exposure",
		Args:        []ArgSpec{{"gamma", "float", true, "", "power-law exponent (>= 0)"}},
		Usage:       "exposure <gamma>",
		Description: "Power-law (gamma) exposure adjustment.",
	},
	{
		Name:        "log",
		Args:        []ArgSpec{},
		Usage:       "log",
		Description: "Logarithmic range compression.",
	},
	{
		Name:           "equalize",
		Args:           []ArgSpec{},
		Usage:          "equalize",
		Description:    "Histogram equalization.",
		NeedsHistogram: true,
	},
	{
		Name:        "negate",
		Args:        []ArgSpec{},
		Usage:       "negate",
		Description: "Invert intensities.",
	},
	{
		Name:        "threshold",
		Args:        []ArgSpec{{"value", "int", false, "128", "intensities at or above become 255"}},
		Usage:       "threshold [value]",
		Description: "Binary threshold.",
	},
	{
		Name:        "posterize",
		Args:        []ArgSpec{{"levels", "int", true, "", "number of output levels (>= 2)"}},
		Usage:       "posterize <levels>",
		Description: "Reduce to evenly spaced levels.",
	},
	{
		Name:           "normalize",
		Args:           []ArgSpec{},
		Usage:          "normalize",
		Description:    "Stretch the occupied intensity range to 0..255.",
		NeedsHistogram: true,
	},
	{
		Name:           "autogamma",
		Args:           []ArgSpec{},
		Usage:          "autogamma",
		Description:    "Gamma-correct so the mean intensity lands mid-range.",
		NeedsHistogram: true,
	},
	{
		Name:        "level",
		Args:        []ArgSpec{{"blackPoint", "float", true, "", "black point"}, {"gamma", "float", false, "1", "midtone gamma"}, {"whitePoint", "float", false, "255", "white point"}},
		Usage:       "level <blackPoint> [gamma] [whitePoint]",
		Description: "Adjust levels (black/gamma/white).",
	},
}

var byName = func() map[string]CommandSpec {
	m := make(map[string]CommandSpec, len(Commands))
	for _, c := range Commands {
		m[c.Name] = c
	}
	return m
}()

// Lookup returns the CommandSpec for name.
func Lookup(name string) (CommandSpec, bool) {
	c, ok := byName[name]
	return c, ok
}

// Names returns the registered transform names, sorted.
func Names() []string {
	names := maps.Keys(byName)
	sort.Strings(names)
	return names
}

// Help renders a one-line-per-command summary.
func Help() string {
	var sb strings.Builder
	for _, n := range Names() {
		c := byName[n]
		fmt.Fprintf(&sb, "  %-40s %s\n", c.Usage, c.Description)
	}
	return sb.String()
}

// NormalizeArgs checks args against the CommandSpec for name, fills in defaults
// and verifies numeric types. The result has one entry per ArgSpec.
func NormalizeArgs(name string, args []string) ([]string, error) {
	c, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown command: %s", lut.ErrInvalidArgument, name)
	}
	if len(args) > len(c.Args) {
		return nil, fmt.Errorf("%w: %s takes at most %d args, got %d", lut.ErrInvalidArgument, name, len(c.Args), len(args))
	}
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		raw := ""
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("%w: missing required parameter: %s", lut.ErrInvalidArgument, a.Name)
			}
			raw = a.Default
		}
		switch a.Type {
		case "int":
			if _, err := strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("%w: invalid %s %q: expected integer", lut.ErrInvalidArgument, a.Name, raw)
			}
		case "float":
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("%w: invalid %s %q: expected number", lut.ErrInvalidArgument, a.Name, raw)
			}
		}
		out[i] = raw
	}
	return out, nil
}
