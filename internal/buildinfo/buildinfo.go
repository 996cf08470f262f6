// Package buildinfo carries values stamped at link time:
//
//	go build -ldflags "-X github.com/prr-network/prr/internal/buildinfo.Version=1.2.3" ./cmd/prr
package buildinfo

// Version is the release version of the binary.
var Version = "0.1.0"
