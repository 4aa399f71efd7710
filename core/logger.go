package core

// Logger is the application logger.
// args may hold errors, extra data maps, the *http.Request being served and the Actor the log entry is about.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor is the authenticated user behind a log entry.
type Actor struct {
	ID       string
	Username string
	Email    string
	Role     string // role name, empty for plain users
}

func (a Actor) IsZero() bool { return a.ID == "" }
