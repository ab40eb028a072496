package tui

// Bubble Tea message types

// target names the view a finished fetch belongs to.
type target int

const (
	targetList target = iota
	targetDetail
	targetModal
)

// jobDoneMsg is sent when a fetch started by a view settles.
type jobDoneMsg struct {
	target target
}

// mutationDoneMsg is sent when a create/update/delete call returns.
type mutationDoneMsg struct {
	err error
}

// snackbarExpiredMsg is sent when a snackbar's display time is over.
type snackbarExpiredMsg struct {
	id uint64
}

// tokenReloadedMsg is sent after the token file was read again.
type tokenReloadedMsg struct {
	err error
}

// tokenChangedMsg is sent when the session gains or loses its token.
type tokenChangedMsg struct {
	available bool
}

// stateChangedMsg is sent when the app state store changed.
type stateChangedMsg struct{}

// listChangedMsg is sent when the active list settled a fetch.
type listChangedMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenMaintenance
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeSearch
	ModeConfirmDelete
)
