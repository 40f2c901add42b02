package chat

// AccessPolicy decides whether a user may join or read an event room
type AccessPolicy interface {
	Allow(chatID, userID int) bool
}

// AllowAll admits every authenticated user to every room. Per-room
// membership rules (organizer-only rooms, invite lists) plug in here.
type AllowAll struct{}

// Allow always returns true
func (AllowAll) Allow(chatID, userID int) bool { return true }
