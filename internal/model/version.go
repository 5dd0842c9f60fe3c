package model

// Version is the released version, overridden at build time with
// -ldflags "-X dlcini/internal/model.Version=vX.Y.Z".
var Version = "v0.3.1"
