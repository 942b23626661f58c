package types

// Version is the version of tagrelease, overwritten at build time
var Version = "dev"
