package rawstore

import (
	goversion "github.com/hashicorp/go-version"
)

// CurrentFormatVersion is the store_format_version this package writes.
const CurrentFormatVersion = "1.0.0"

// supportedConstraint bounds the store_format_version values Load will
// accept: any 0.x or 1.x release. A single Loader reads all of them, as
// they share one on-disk shape; only a 2.0 would be free to break it.
var supportedConstraint = mustConstraint(">= 0.0.0, < 2.0.0")

func mustConstraint(c string) goversion.Constraints {
	constraint, err := goversion.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// CheckVersionSupported parses raw's declared store_format_version and
// reports whether this package's Loader can read it.
func CheckVersionSupported(versionString string) error {
	v, err := goversion.NewVersion(versionString)
	if err != nil {
		return &UnknownFormatVersionError{Version: versionString}
	}
	if !supportedConstraint.Check(v) {
		return &UnsupportedFormatVersionError{Version: versionString}
	}
	return nil
}
