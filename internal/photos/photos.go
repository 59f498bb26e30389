// Package photos holds the naming rules shared by every route that turns a
// client-supplied filename into an object key.
package photos

import (
	"regexp"
	"strings"
)

const ContentType = "image/png"

// filenamePattern accepts VRChat screenshot names, optionally tagged with the
// world id they were taken in:
//
//	VRChat_2024-01-31_21-05-44.123_1920x1080.png
//	VRChat_2024-01-31_21-05-44.123_1920x1080_wrld_4cf554b4-430c-4f8f-b53e-1f294eed230b.png
var filenamePattern = regexp.MustCompile(
	`^VRChat_[0-9]{4}-[0-9]{2}-[0-9]{2}_[0-9]{2}-[0-9]{2}-[0-9]{2}\.[0-9]{3}_[0-9]{4}x[0-9]{4}` +
		`(_wrld_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})?\.png$`,
)

func ValidFilename(name string) bool {
	return filenamePattern.MatchString(name)
}

// AccountPrefix is the key prefix every object of accountID lives under. The
// trailing separator keeps account "12" from listing account "123".
func AccountPrefix(prefix, accountID string) string {
	return prefix + accountID + "/"
}

func ObjectKey(prefix, accountID, filename string) string {
	return AccountPrefix(prefix, accountID) + filename
}

// BaseName returns the path component after the last separator.
func BaseName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
