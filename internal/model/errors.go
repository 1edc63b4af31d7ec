package model

import "errors"

// Common errors used across the application
var (
	// Credential errors
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrUserExists    = errors.New("username already exists")

	// Room errors
	ErrBadRoomName  = errors.New("invalid room name")
	ErrRoomExists   = errors.New("room name already taken")
	ErrRegistryFull = errors.New("room registry is full")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room already has two players")
	ErrNotInRoom    = errors.New("connection is not a player in any room")
)
