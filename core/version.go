package core

// Version is overridden at build time with -ldflags.
var Version = "0.4.0"
