package progress

import (
	"math"
	"strconv"
	"strings"
)

// Template markers shared with the yt-dlp invocation
const (
	LinePrefix       = "downloaded_bytes:"
	PercentSuffix    = "%"
	ProgressTemplate = LinePrefix + "%(progress._percent_str)s"
)

// Parse converts one output line into a fraction (62.0% -> 0.62).
// It reports false for any line that is not a progress line. Values above 1
// are passed through; clamping belongs to the registry.
func Parse(line string) (float64, bool) {
	rest, ok := strings.CutPrefix(line, LinePrefix)
	if !ok {
		return 0, false
	}

	number, ok := strings.CutSuffix(strings.TrimSpace(rest), PercentSuffix)
	if !ok {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v / 100, true
}
