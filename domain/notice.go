package domain

// NoticeKind classifies user-visible notifications.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
	// NoticePendingCompleted marks an action replayed after login, kept
	// distinct from a direct confirmation.
	NoticePendingCompleted
)

// Notice is a transient message for the user.
type Notice struct {
	Kind NoticeKind
	Text string
}
