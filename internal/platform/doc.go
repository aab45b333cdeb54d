// Package platform contains filesystem helpers that need OS-specific
// behavior: permission enforcement (skipped on Windows), symlink creation
// with a copy fallback, and directory moves that survive crossing
// filesystem boundaries.
package platform
