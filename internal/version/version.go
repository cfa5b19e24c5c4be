// ABOUTME: Version and product identification constants
// ABOUTME: Reported by the player and device listing commands
package version

const (
	// Version is the software version
	Version = "0.3.0"

	// Product is the product name shown to users
	Product = "pcmout"

	// Manufacturer identifies who ships the software
	Manufacturer = "Resonate"
)

// String returns the product name and version as printed by the commands
func String() string {
	return Product + " " + Version
}
