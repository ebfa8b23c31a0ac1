// Package cli implements the interactive dealwatch shell: it parses
// commands, runs them against the reconciler and dispatcher, and renders
// deal lists and details as fixed-width text.
package cli
