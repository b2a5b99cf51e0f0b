// Package otp issues the 4-digit pickup handshake code exchanged between a
// donor and a consumer. The code confirms an in-person handover between two
// parties who already share contact details; it is not an authentication
// credential, so a non-cryptographic source is used.
package otp

import (
	"math/rand"
	"strconv"
)

const (
	lowest  = 1000
	highest = 9999
)

// Generator produces pickup codes. Tests swap in a fixed sequence.
type Generator interface {
	New() string
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() string

func (f GeneratorFunc) New() string { return f() }

// Random returns a Generator drawing uniformly from 1000-9999.
func Random() Generator {
	return GeneratorFunc(New)
}

// New returns a fresh code: exactly four ASCII digits, 1000-9999 inclusive.
func New() string {
	return strconv.Itoa(lowest + rand.Intn(highest-lowest+1))
}
