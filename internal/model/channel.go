// Package model holds the plain data types shared across the controller:
// channels, station index entries, shows, schedules, parental policy and
// EAS alert descriptors. None of these types own I/O; reading and writing
// them lives in internal/store.
package model

// Channel is a viewer-dialable number resolving to a station.
type Channel struct {
	Number  int
	Station string
	Enabled bool
}
