package version

// Version is the current telefetch version.
// Overridden at build time via -ldflags "-X .../version.Version=x.y.z"
var Version = "0.4.2"
