package utils

import "github.com/google/uuid"

// UUIDGenerator produces opaque unique identifiers for users,
// credentials, and token jti values. UUIDv7 is preferred for its
// time-ordered layout; falls back to v4 if v7 generation fails.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
