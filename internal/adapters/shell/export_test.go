package shell

// ResolveEnvironment exports resolveEnvironment for testing.
var ResolveEnvironment = resolveEnvironment
