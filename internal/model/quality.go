package model

// Quality is the closed set of format presets offered to the user
type Quality string

const (
	QualityBest      Quality = "best"
	Quality1080p     Quality = "1080p"
	Quality720p      Quality = "720p"
	Quality480p      Quality = "480p"
	Quality360p      Quality = "360p"
	QualityAudioOnly Quality = "Audio Only"
)

// DefaultQuality is preselected in the UI
const DefaultQuality = Quality720p

// Qualities returns the presets in display order
func Qualities() []Quality {
	return []Quality{Quality1080p, Quality720p, Quality480p, Quality360p, QualityAudioOnly, QualityBest}
}

// ParseQuality maps text to a preset; unknown text falls back to best
func ParseQuality(s string) Quality {
	for _, q := range Qualities() {
		if string(q) == s {
			return q
		}
	}
	return QualityBest
}

// String returns the string representation of Quality
func (q Quality) String() string {
	return string(q)
}
