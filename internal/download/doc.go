package download

// Package download runs yt-dlp as an external process, one per task. It maps
// quality presets to format expressions, streams stdout line by line through
// the progress parser and forwards parsed values on the task's channel.
