package vkm

import (
	"encoding/binary"
	"errors"
	"testing"
)

// spirvHeader builds the minimal 5-word SPIR-V module header.
func spirvHeader() []byte {
	out := make([]byte, 20)
	binary.LittleEndian.PutUint32(out[0:], spirvMagic)
	binary.LittleEndian.PutUint32(out[4:], 0x00010000) // version 1.0
	return out
}

func TestValidateSPIRV(t *testing.T) {
	if err := validateSPIRV(spirvHeader()); err != nil {
		t.Errorf("valid header rejected: %v", err)
	}
}

func TestValidateSPIRVTooShort(t *testing.T) {
	err := validateSPIRV(spirvHeader()[:16])
	if !errors.Is(err, ErrShaderLoad) {
		t.Errorf("expected ErrShaderLoad, got %v", err)
	}
}

func TestValidateSPIRVUnaligned(t *testing.T) {
	data := append(spirvHeader(), 0, 0, 0)
	err := validateSPIRV(data)
	if !errors.Is(err, ErrShaderLoad) {
		t.Errorf("expected ErrShaderLoad, got %v", err)
	}
}

func TestValidateSPIRVBadMagic(t *testing.T) {
	data := spirvHeader()
	// Big-endian modules are rejected too; only little-endian is consumed.
	data[0], data[1], data[2], data[3] = data[3], data[2], data[1], data[0]
	err := validateSPIRV(data)
	if !errors.Is(err, ErrShaderLoad) {
		t.Errorf("expected ErrShaderLoad, got %v", err)
	}
}
