// Package paths enforces the path policy for website projects: every path
// handed to a filesystem API by any other component is produced here.
//
// The policy canonicalizes a website's on-disk project root from its
// identity and normalizes/validates every relative content path requested
// against it. Absolute paths and parent-directory traversal are rejected
// outright; a leading duplicated content-root segment (a historical
// double-prefix defect in stored content references) is repaired by
// stripping exactly one occurrence; and the joined result is confirmed to
// be lexically contained within the project root as defense in depth
// against encoded or symlinked inputs.
package paths
