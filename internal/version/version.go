// ABOUTME: Build version information
// ABOUTME: Version is overridden at link time with -ldflags "-X"
package version

// Version is the release version
var Version = "0.1.0"

const (
	// Product names the tool in summaries and metrics
	Product = "seqgen"

	// Manufacturer is printed in run summaries and exported as a build_info label
	Manufacturer = "Tonewright"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}
