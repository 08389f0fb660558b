package widget

// State is the widget's phase. Exactly one of Idle, Loading, Success or
// Failure holds at any time.
type State interface {
	isState()
}

type Idle struct{}

type Loading struct{}

type Success struct {
	Text string
}

type Failure struct {
	Text string
}

func (Idle) isState()    {}
func (Loading) isState() {}
func (Success) isState() {}
func (Failure) isState() {}

// ViewState is the flat projection of a State used for rendering.
type ViewState struct {
	Response  string
	IsLoading bool
	Error     string
}

func View(s State) ViewState {
	switch s := s.(type) {
	case Loading:
		return ViewState{IsLoading: true}
	case Success:
		return ViewState{Response: s.Text}
	case Failure:
		return ViewState{Error: s.Text}
	default:
		return ViewState{}
	}
}

// ButtonLabel derives the action control from the view. It is disabled only
// while a request is in flight.
func ButtonLabel(hasResponse, isLoading bool) (label string, disabled bool) {
	switch {
	case isLoading:
		return "Getting Response...", true
	case hasResponse:
		return "Try Again", false
	default:
		return "Send Message", false
	}
}
