// Package location models the page location a widget runs under: read access
// to its path, query and fragment, plus the ability to navigate away.
package location

import (
	"fmt"
	"net/url"
	"sync"
)

// Provider gives read access to the current page location.
type Provider interface {
	Path() string
	RawQuery() string
	Fragment() string
}

// Navigator performs a full-page navigation.
type Navigator interface {
	Navigate(target string)
}

type Location interface {
	Provider
	Navigator
}

// URL is a Location backed by a parsed href. It always describes the page the
// widget was mounted on: Navigate only hands the target, resolved against that
// page, to onNavigate. Leaving the page is the browser's job.
type URL struct {
	mu         sync.RWMutex
	u          *url.URL
	onNavigate func(target string)
}

func Parse(href string, onNavigate func(target string)) (*URL, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("location.Parse: %w", err)
	}
	return &URL{u: u, onNavigate: onNavigate}, nil
}

func (l *URL) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.u.Path == "" {
		return "/"
	}
	return l.u.Path
}

func (l *URL) RawQuery() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.RawQuery
}

// Fragment returns the fragment in its original encoding, without the '#'.
func (l *URL) Fragment() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.EscapedFragment()
}

func (l *URL) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.String()
}

func (l *URL) Navigate(target string) {
	l.mu.RLock()
	if next, err := l.u.Parse(target); err == nil {
		target = next.String()
	}
	cb := l.onNavigate
	l.mu.RUnlock()

	if cb != nil {
		cb(target)
	}
}
