// Except.go: Contains functions to make handling panics less PITA

package helpers

import (
	"fmt"

	"github.com/Seklfreak/Warden/cache"
	"github.com/getsentry/raven-go"
)

// Recover recover()s and prints the error to console
func Recover() {
	err := recover()
	if err != nil {
		cache.GetLogger().WithField("module", "helpers").Errorf("recovered from panic: %#v", err)

		raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{})
	}
}

// Relax is a helper to reduce if-checks if panicking is allowed
// If $err is nil this is a no-op. Panics otherwise.
func Relax(err error) {
	if err != nil {
		if DEBUG_MODE == true {
			fmt.Printf("%#v\n", err)
		}
		panic(err)
	}
}
