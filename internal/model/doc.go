package model

// Package model defines domain data structures used across the app: download
// tasks, submissions, quality presets and status enums. Structures are plain
// values so the registry can hand out read-only snapshots to the UI.
