package session

// UserError carries a message meant to be shown to the user verbatim.
// Nothing wrapped in a UserError is fatal; the command layer renders the
// message and moves on.
type UserError struct {
	msg string
}

func NewUserError(msg string) *UserError {
	return &UserError{msg: msg}
}

func (e *UserError) Error() string {
	return e.msg
}

var (
	ErrNotInVoice     = NewUserError("I am not in a voice channel!")
	ErrNothingPlaying = NewUserError("There's no song playing.")
	ErrNotSeekable    = NewUserError("This song is not seekable.")
	ErrNotPlaylist    = NewUserError("URL is not a playlist!")
	ErrBadSource      = NewUserError("Invalid YouTube URL!")
)
