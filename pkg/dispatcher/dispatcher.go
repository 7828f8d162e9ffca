// Package dispatcher executes the named commands that plan steps resolve to.
// The vault implementation performs file operations inside a single vault
// directory; the interface exists so the plan engine can be driven against
// fakes in tests.
package dispatcher

import "context"

// SourceAgent tags command invocations that originate from the plan engine
const SourceAgent = "agent"

// Dispatcher executes a single named command with a source tag and
// positional arguments
type Dispatcher interface {
	Execute(ctx context.Context, commandID, source string, args ...interface{}) (interface{}, error)
}

// ResourceReader is the non-mutating side channel used for diff previews:
// it reads a resource's current content by path, independent of the step
// pipeline.
type ResourceReader interface {
	ReadResource(ctx context.Context, path string) (string, error)
}
