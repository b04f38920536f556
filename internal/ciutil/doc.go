// Package ciutil detects continuous integration environments and resolves
// settings that may be provided under several environment variable names.
package ciutil
