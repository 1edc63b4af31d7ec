package model

// ConnID is an opaque handle for an accepted connection.
// Connections are identified by these rather than by socket object identity,
// which keeps cleanup ordering simple after a socket closes.
type ConnID uint64

// Credential is a stored account record.
// Created by registration, never mutated, never destroyed.
type Credential struct {
	Username     string
	PasswordHash string // bcrypt hash; plaintext is never stored
}
