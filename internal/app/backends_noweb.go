//go:build noweb

package app

import "github.com/five82/minerui/internal/backend"

// registerWeb leaves the web kind unregistered, so selecting it falls back
// to the terminal console with backend.ErrNotRegistered.
func registerWeb(*backend.Factory, deps) {}
