package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. Version suffix enables
// future algorithm migration without ambiguity against old hashes.
const (
	DomainProgram = "lexpattern/program/v1"
	DomainResult  = "lexpattern/result/v1"
	DomainBinding = "lexpattern/binding/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity between e.g. domain "ab"+data "c" and
// domain "a"+data "bc".
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramFingerprint computes a content-addressed identity for a compiled
// Program: its trigger definitions and action slots, not its ProgramID
// (which is an arena index, not stable across recompiles). Two programs
// compiled from identical source produce the same fingerprint even if
// assigned different table slots (spec §4.3 program table).
func ProgramFingerprint(p Program) (string, error) {
	canonical, err := MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("ProgramFingerprint: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// ResultFingerprint computes a content-addressed identity for a Result,
// used as a dedup key when the same rule fires identically across a
// replay (spec §4.5 past-event replay) and in golden-fixture naming.
func ResultFingerprint(r Result) (string, error) {
	canonical, err := MarshalCanonical(r)
	if err != nil {
		return "", fmt.Errorf("ResultFingerprint: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// BindingHash computes a content hash of a variable-binding set, used to
// detect duplicate matches for the same program within a single dispose
// window (spec §4.4 sliding-window dispose scheme).
func BindingHash(bindings ObjectValue) (string, error) {
	canonical, err := MarshalCanonical(bindings)
	if err != nil {
		return "", fmt.Errorf("BindingHash: %w", err)
	}
	return hashWithDomain(DomainBinding, canonical), nil
}

// MustProgramFingerprint is like ProgramFingerprint but panics on error.
// Use only in tests or when the program is known to be well-formed.
func MustProgramFingerprint(p Program) string {
	id, err := ProgramFingerprint(p)
	if err != nil {
		panic(err)
	}
	return id
}

// MustResultFingerprint is like ResultFingerprint but panics on error.
func MustResultFingerprint(r Result) string {
	id, err := ResultFingerprint(r)
	if err != nil {
		panic(err)
	}
	return id
}

// MustBindingHash is like BindingHash but panics on error.
func MustBindingHash(bindings ObjectValue) string {
	hash, err := BindingHash(bindings)
	if err != nil {
		panic(err)
	}
	return hash
}
