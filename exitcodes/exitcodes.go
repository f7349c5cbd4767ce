// Package exitcodes defines the standard exit codes used by specrun.
package exitcodes

// Exit code constants used by specrun
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every case passes
// * RunFailure (1): Used when one or more cases fail
// * RuntimeErr (2): Used for runtime errors such as panics, timeouts or other failures
const (
	Success    = 0 // All cases pass
	RunFailure = 1 // Case failures
	RuntimeErr = 2 // Runtime errors or timeouts
)
