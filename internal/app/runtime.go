package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// TestModeEnv is set by the testing helper package to keep binaries from
// dialling Redis or the backend while tests import them.
const TestModeEnv = "COMPANYHUB_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

func loadTestMode() {
	testMode.Store(os.Getenv(TestModeEnv) == "1")
}

// InTestMode reports whether runtime side effects should be skipped.
func InTestMode() bool {
	testModeOnce.Do(loadTestMode)
	return testMode.Load()
}
