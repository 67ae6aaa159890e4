// Package routing implements the path-matching engine shared by both
// interaction kinds of the dispatch core.
//
// Patterns use brace-delimited named parameters:
//
//	/items
//	/items/{id}
//	/rooms/{room}/members/{name}
//
// A Table holds the routes of one kind in registration order. Matching
// scans that order and the first matching route wins, which fixes
// precedence among overlapping patterns: with /items/{id} registered
// before /items/new, the path /items/new resolves to /items/{id} with
// id="new".
//
// A pattern matches a path when the segment counts are equal, every
// literal segment matches exactly, and every parameter segment captures a
// non-empty value. There are no wildcard or catch-all segments. Parameter
// values are returned as raw strings; type conversion belongs to the
// handler.
//
// Tables are built during server setup and frozen before serving begins,
// after which they are read-only and safe for concurrent matching without
// synchronization.
package routing
