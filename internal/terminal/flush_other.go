//go:build !linux

package terminal

// discardInput is a no-op here; ReadKey still drops stray control sequences.
func discardInput(int) error { return nil }
