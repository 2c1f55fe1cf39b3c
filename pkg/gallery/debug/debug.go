package debug

// IsDebugShowSetup reports whether the resolved configuration is logged at
// startup, with secrets redacted.
func IsDebugShowSetup() bool {
	return isDebugShowSetupSet()
}

func IsDebugLog() bool {
	return isDebugLogSet()
}
