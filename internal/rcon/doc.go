// Package rcon defines the Client contract used by command handlers and
// provides a Source-RCON TCP implementation of it.
//
// The rest of the system depends only on the two-operation contract
// (Execute + Connected); wire-format details stay inside this package.
package rcon
