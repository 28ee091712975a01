package game

// NewGamePath is the identifier of a fresh game.
const NewGamePath = "/"

// GamePath returns the identifier that resumes the game described by m.
func GamePath(m MoveLog) string {
	return "/game/" + m.String()
}

// NextPath returns where the session goes after a request: a new game once
// the outcome has happened, otherwise the extended log.
func NextPath(m MoveLog, s Status) string {
	if s.IsReset() {
		return NewGamePath
	}
	return GamePath(m)
}
