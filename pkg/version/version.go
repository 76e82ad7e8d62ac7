// Package version reports the ggd-go library version.
package version

import (
	"fmt"
	"runtime"
)

// Current is the version of this library.
const Current = "0.3.0"

// Product is the name sent in User-Agent headers.
const Product = "ggd-go"

// UserAgent returns the User-Agent sent to the discovery service,
// e.g. "ggd-go/0.3.0 (go1.25.5; linux/arm64)".
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s/%s)", Product, Current, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// String returns the version line printed by the binaries.
func String(binary string) string {
	return fmt.Sprintf("%s %s (%s %s)", binary, Current, Product, runtime.Version())
}
