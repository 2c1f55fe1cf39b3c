package debug

import "os"

const (
	DebugShowSetupKey = "DEBUG_SHOW_SETUP"
	DebugLogKey       = "DEBUG_LOG"
)

func isDebugShowSetupSet() bool {
	return os.Getenv(DebugShowSetupKey) == "true"
}

func isDebugLogSet() bool {
	return os.Getenv(DebugLogKey) == "true"
}
