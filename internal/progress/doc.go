package progress

// Package progress turns yt-dlp output lines into fractions and carries them
// from a runner goroutine to the consumer tick through per-task channels that
// never block the sender.
