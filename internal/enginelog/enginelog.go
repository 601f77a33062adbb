// Package enginelog wires up the leveled, component-tagged logging used by
// the engine's internal diagnostics (not the UCI protocol output itself,
// which always goes through plain fmt.Println on stdout).
package enginelog

import (
	"os"

	"github.com/op/go-logging"
)

var backendConfigured bool

// For returns a logger tagged with the given component name, e.g. "board",
// "engine", "uci". Call Configure once at startup before using any logger
// returned here; loggers obtained before Configure still work, they just
// emit through whatever backend is active at the time of the call.
func For(component string) *logging.Logger {
	return logging.MustGetLogger(component)
}

// format mirrors go-logging's own default layout, adding the component tag
// and level so stderr diagnostics read like "14:02:03.104 WARN engine: ...".
var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
)

// Configure wires the logging backend from the KELP_LOG environment
// variable: unset discards Debug/Info and surfaces Warning+ to stderr;
// set to a file path, a Debug-level backend writes there instead.
func Configure() {
	if backendConfigured {
		return
	}
	backendConfigured = true

	if path := os.Getenv("KELP_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			backend := logging.NewLogBackend(f, "", 0)
			formatted := logging.NewBackendFormatter(backend, format)
			leveled := logging.AddModuleLevel(formatted)
			leveled.SetLevel(logging.DEBUG, "")
			logging.SetBackend(leveled)
			return
		}
	}

	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.WARNING, "")
	logging.SetBackend(leveled)
}
