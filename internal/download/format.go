package download

import (
	"path/filepath"

	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/progress"
)

// yt-dlp flags and templates
const (
	FormatFlag           = "-f"
	ProgressTemplateFlag = "--progress-template"
	NewlineFlag          = "--newline"
	OutputFlag           = "-o"
	OutputTemplate       = "%(title)s.%(ext)s"
)

// Format expressions
const (
	FormatBest      = "best"
	FormatAudioOnly = "bestaudio"
)

// FormatSelector maps a quality preset to a yt-dlp format expression.
// Every input yields a valid expression; unknown presets select best.
func FormatSelector(q model.Quality) string {
	switch q {
	case model.Quality1080p:
		return "best[height<=1080]"
	case model.Quality720p:
		return "best[height<=720]"
	case model.Quality480p:
		return "best[height<=480]"
	case model.Quality360p:
		return "best[height<=360]"
	case model.QualityAudioOnly:
		return FormatAudioOnly
	default:
		return FormatBest
	}
}

// BuildArgs builds the yt-dlp command line for sub. extra is inserted before the URL.
func BuildArgs(sub model.Submission, extra []string) []string {
	output := OutputTemplate
	if sub.Directory != "" {
		output = filepath.Join(sub.Directory, OutputTemplate)
	}

	args := []string{
		FormatFlag, FormatSelector(sub.Quality),
		ProgressTemplateFlag, progress.ProgressTemplate,
		NewlineFlag,
		OutputFlag, output,
	}
	args = append(args, extra...)
	return append(args, sub.URL)
}
