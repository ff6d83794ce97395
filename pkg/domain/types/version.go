package types

// Version is the forksync version. Overwritten via ldflags at release build.
var Version = "dev"
