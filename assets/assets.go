// Package assets bundles the yt-dlp executables shipped with release builds.
// Release pipelines drop yt-dlp / yt-dlp.exe into bin/ before compiling;
// development builds carry only the README and rely on a yt-dlp on PATH.
package assets

import "embed"

// BinDir is the directory inside FS that holds the executables
const BinDir = "bin"

//go:embed bin
var FS embed.FS
