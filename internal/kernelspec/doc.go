// Package kernelspec resolves the per-user global Jupyter kernel registry
// and the project-local registry, and loads and validates kernel.json
// registration documents found in either one.
package kernelspec
