// Package testing switches the process into test mode when imported, so
// binaries and routers skip runtime side effects such as request logging.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

const testModeEnv = "ODYSSEY_TEST_MODE"

var once sync.Once

// Enable sets the test-mode flag. Repeated calls are no-ops.
func Enable() {
	once.Do(func() {
		_ = os.Setenv(testModeEnv, "1")
		if os.Getenv("LOG_FORMAT") == "" {
			_ = os.Setenv("LOG_FORMAT", "json")
		}
	})
}

func init() {
	Enable()
}

func TestMain(m *stdtesting.M) {
	Enable()
	os.Exit(m.Run())
}
