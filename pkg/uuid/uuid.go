// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for Yomira ID.

It wraps the google/uuid library to generate Version 7 values, which sort by
creation time and keep PostgreSQL B-tree indexes compact. Every primary key
(accounts, sessions, linked identities) is one of these.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// # Parsing

// Valid reports whether value is a canonical UUID string of any version.
func Valid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil && len(value) == 36
}
