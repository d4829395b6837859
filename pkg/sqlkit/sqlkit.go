// Package sqlkit carries shared project metadata.
package sqlkit

// Version is the sqlkit release version.
const Version = "v0.1.0"
