// Package installer wraps the external kernel-install executable. The
// subprocess's combined output and exit code are captured into the returned
// error so a failed install stays diagnosable instead of surfacing later as
// a missing registration.
package installer
