package app

// Version is the fallback version label, set at build time via -ldflags. The
// installation's VERSION file takes precedence.
var Version = ""
