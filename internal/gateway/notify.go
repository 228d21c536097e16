// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/internal/apperr"
)

// Notifier shows an error to the user.
type Notifier interface {
	Notify(err *apperr.Error)
}

// Navigator performs the navigation side effects of auth failures.
type Navigator interface {
	// ToLogin sends the user to the login page, returning to redirect
	// afterwards.
	ToLogin(redirect string)
	// ToForbidden shows the permission-denied page.
	ToForbidden()
}

// LogNotifier reports errors as warn-level log events.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(err *apperr.Error) {
	n.Log.Warn().Str("kind", string(err.Kind)).Str("code", err.Code).Msg(err.Message)
}

// WriterNotifier prints one line per error, for terminal use.
type WriterNotifier struct {
	mu sync.Mutex
	W  io.Writer
}

func (n *WriterNotifier) Notify(err *apperr.Error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.W, "error: %s\n", err.Message)
}

// WriterNavigator prints where a user would be sent.
type WriterNavigator struct {
	W io.Writer
}

func (n WriterNavigator) ToLogin(redirect string) {
	fmt.Fprintf(n.W, "session ended; run \"research-admin login\" to continue (was: %s)\n", redirect)
}

func (n WriterNavigator) ToForbidden() {
	fmt.Fprintln(n.W, "permission denied for this operation")
}

type nopNavigator struct{}

func (nopNavigator) ToLogin(string) {}
func (nopNavigator) ToForbidden()   {}
