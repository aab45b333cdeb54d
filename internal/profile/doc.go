// Package profile declares the named devshell profiles a session can
// activate. A profile pins the package set the external package provider is
// expected to supply, names the kernel and its install tool, and is either
// builtin (embedded defaults) or declared in a project-level nbx.yaml.
package profile
