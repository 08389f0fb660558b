package widget

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/exp/slog"

	"peerwave-widget/internal/lib/logger/sl"
	"peerwave-widget/internal/location"
	"peerwave-widget/internal/peerwave"
)

const fallbackErrorText = "An error occurred"

// Completer is the chat call the widget drives. *peerwave.Client satisfies it.
type Completer interface {
	FetchChatCompletion(ctx context.Context, loc location.Location, message string) (string, error)
}

var _ Completer = (*peerwave.Client)(nil)

// Widget sends a fixed prompt and tracks the outcome. Every attempt gets a
// sequence number; only the latest attempt's result is applied.
type Widget struct {
	client   Completer
	loc      location.Location
	prompt   string
	onChange func(State)
	log      *slog.Logger

	mu        sync.Mutex
	state     State
	seq       uint64
	mounted   bool
	unmounted bool
	ctx       context.Context
	cancel    context.CancelFunc
	inflight  sync.WaitGroup

	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	nextTicket uint64
	turn       uint64
}

// New builds an idle widget. onChange, if set, is called with every state the
// widget enters, in order, never concurrently, and never while the widget is
// locked: a slow callback delays later notifications but not Send, State or
// Unmount.
func New(client Completer, loc location.Location, prompt string, onChange func(State), log *slog.Logger) *Widget {
	if log == nil {
		log = sl.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Widget{
		client:   client,
		loc:      loc,
		prompt:   prompt,
		onChange: onChange,
		log:      log,
		state:    Idle{},
		ctx:      ctx,
		cancel:   cancel,
	}
	w.notifyCond = sync.NewCond(&w.notifyMu)
	return w
}

func (w *Widget) Prompt() string {
	return w.prompt
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Mount dispatches one attempt when the location carries a token. Only the
// first call does anything.
func (w *Widget) Mount() {
	w.mu.Lock()
	if w.mounted || w.unmounted {
		w.mu.Unlock()
		return
	}
	w.mounted = true
	w.mu.Unlock()

	if _, ok := location.GetToken(w.loc); ok {
		w.log.Debug("token present on mount, sending prompt")
		w.Send()
	}
}

// Send starts a new attempt regardless of the current phase and returns its
// sequence number. It returns 0 after Unmount.
func (w *Widget) Send() uint64 {
	w.mu.Lock()
	if w.unmounted {
		w.mu.Unlock()
		return 0
	}
	w.seq++
	seq := w.seq
	w.state = Loading{}
	ticket, state := w.takeTicketLocked()
	w.inflight.Add(1)
	w.mu.Unlock()

	// Loading reaches listeners before the request goes out.
	w.deliver(ticket, state)
	go w.attempt(seq)

	return seq
}

func (w *Widget) attempt(seq uint64) {
	defer w.inflight.Done()

	reply, err := w.client.FetchChatCompletion(w.ctx, w.loc, w.prompt)

	var next State
	if err != nil {
		text := err.Error()
		if text == "" {
			text = fallbackErrorText
		}
		next = Failure{Text: text}
		if !errors.Is(err, peerwave.ErrAuthRedirect) && !errors.Is(err, context.Canceled) {
			w.log.Warn("chat attempt failed", slog.Uint64("seq", seq), sl.Err(err))
		}
	} else {
		next = Success{Text: reply}
	}

	w.mu.Lock()
	if w.unmounted {
		w.mu.Unlock()
		return
	}
	if seq != w.seq {
		latest := w.seq
		w.mu.Unlock()
		w.log.Debug("dropping stale result", slog.Uint64("seq", seq), slog.Uint64("latest", latest))
		return
	}
	w.state = next
	ticket, state := w.takeTicketLocked()
	w.mu.Unlock()

	w.deliver(ticket, state)
}

// takeTicketLocked snapshots the current state for delivery. Tickets are
// handed out under w.mu, so their order is the order states were entered.
func (w *Widget) takeTicketLocked() (uint64, State) {
	ticket := w.nextTicket
	w.nextTicket++
	return ticket, w.state
}

// deliver waits for its turn and then runs onChange without holding w.mu.
func (w *Widget) deliver(ticket uint64, s State) {
	w.notifyMu.Lock()
	for w.turn != ticket {
		w.notifyCond.Wait()
	}
	w.notifyMu.Unlock()

	if w.onChange != nil {
		w.onChange(s)
	}

	w.notifyMu.Lock()
	w.turn++
	w.notifyCond.Broadcast()
	w.notifyMu.Unlock()
}

// Unmount cancels in-flight requests and stops all further state changes.
func (w *Widget) Unmount() {
	w.mu.Lock()
	if w.unmounted {
		w.mu.Unlock()
		return
	}
	w.unmounted = true
	w.mu.Unlock()

	w.cancel()
}

// Wait blocks until every dispatched attempt has finished and its result has
// been delivered.
func (w *Widget) Wait() {
	w.inflight.Wait()
}
