package platform

// Package platform contains OS/platform integration and external tooling glue:
// yt-dlp executable materialization, filesystem helpers, playlist expansion
// via the ytdlp library, and OS folder reveal.
