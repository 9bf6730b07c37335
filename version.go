// Package vidnorm holds build-level metadata shared by the CLI.
package vidnorm

// Version is the current vidnorm version.
const Version = "0.3.1"
