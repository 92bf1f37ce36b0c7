package model

// ParentalPolicy configures the lockout PIN and the channels it governs.
type ParentalPolicy struct {
	PIN                string
	LockedChannels     map[int]bool
	AutoLockChannels   map[int]bool
	AlwaysMuteChannels map[int]bool
}

// Locked reports whether channel number n requires unlocking.
func (p ParentalPolicy) Locked(n int) bool {
	return p.LockedChannels[n]
}

// AutoLock reports whether channel n re-locks when the viewer tunes away.
func (p ParentalPolicy) AutoLock(n int) bool {
	return p.AutoLockChannels[n]
}

// AlwaysMute reports whether channel n's audio is muted regardless of lock state.
func (p ParentalPolicy) AlwaysMute(n int) bool {
	return p.AlwaysMuteChannels[n]
}
