package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconFolder   = "📁"
	IconClose    = "×"
	IconError    = "❌"
	IconStop     = "⏹"
)

// Text fragments
const (
	DashPlaceholder = "—"
)

// Layout sizing (TaskRow / lists)
const (
	StatusLabelWidth   float32 = 160
	ProgressBarWidth   float32 = 140
	ThumbnailWidth     float32 = 96
	ThumbnailHeight    float32 = 54
	RowMinWidth        float32 = 400
	RowMinHeight       float32 = 64
	QualitySelectWidth float32 = 120
)

// Window defaults
const (
	WindowWidth  float32 = 800
	WindowHeight float32 = 600
)

// TickInterval is the default consumer loop cadence
const TickInterval = 100 * time.Millisecond
