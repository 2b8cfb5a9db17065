// Package sdcs implements the shared core of the SDCS draw-command-stream
// renderer.
//
// SDCS is a compact binary format describing 2D drawing operations. A client
// encodes its drawing once; the stream renders identically on every backend
// because exactly one interpreter (package stream) executes it against the
// abstract pixel surface defined here. Concrete renderers satisfy the
// contract in package backend, and package host runs any of them inside an
// isolated child process reachable only through a pair of pipes.
//
// The root package holds the pieces every layer shares: the Surface pixel
// buffer, the RGBA color type, and the library logger.
package sdcs
