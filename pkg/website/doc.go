// Package website is the public surface of the website project core. It
// orchestrates schema resolution, configuration validation, the path
// policy, and the atomic operation manager behind a small API consumed by
// the command layer.
//
// The manager itself holds no state beyond its collaborators: every path
// it touches is produced by the path policy, every mutation funnels
// through the operation manager, and errors from lower components pass
// through unchanged.
package website
