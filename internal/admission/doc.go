// Package admission gates command requests with per-identity,
// per-category fixed-window rate limiting. The check consumes: every
// call counts against the window, denied or not.
package admission
