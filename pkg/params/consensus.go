package params

import (
	"fmt"
	"strconv"
	"strings"
)

// NU6_1BranchID is the consensus branch id of the NU6.1 network upgrade
// (ZIP 255, activated at mainnet height 3146400). Signature digests commit
// to it, so every signature is rejected once the network moves to a later
// branch and this value is not updated.
const NU6_1BranchID uint32 = 0x4dec4df0

// Transaction format constants for v5 (ZIP 225).
const (
	TxVersionV5        uint32 = 5
	VersionGroupIDV5   uint32 = 0x26A7270A
	OverwinteredFlag   uint32 = 1 << 31
	DefaultTxLockTime  uint32 = 0
	DefaultTxSequence  uint32 = 0xFFFFFFFF
	branchIDHexDigits         = 8
	maxBranchIDHexSize        = 2 + branchIDHexDigits
)

// Consensus is the set of consensus-bound values a signer commits to.
// It is passed explicitly to every signing and serialization call.
type Consensus struct {
	Name           string
	BranchID       uint32
	VersionGroupID uint32
	TxVersion      uint32
}

// NU6_1 is the consensus parameter set for the NU6.1 upgrade.
var NU6_1 = Consensus{
	Name:           "nu6.1",
	BranchID:       NU6_1BranchID,
	VersionGroupID: VersionGroupIDV5,
	TxVersion:      TxVersionV5,
}

// Current returns the parameter set used when nothing else is configured.
func Current() Consensus {
	return NU6_1
}

// HeaderVersion returns the version field with the overwintered bit set.
func (c Consensus) HeaderVersion() uint32 {
	return c.TxVersion | OverwinteredFlag
}

// WithBranchID returns a copy of c bound to a different branch id.
func (c Consensus) WithBranchID(id uint32) Consensus {
	c.BranchID = id
	c.Name = fmt.Sprintf("custom-%08x", id)
	return c
}

// String returns a short description, e.g. "nu6.1 (4dec4df0)".
func (c Consensus) String() string {
	return fmt.Sprintf("%s (%08x)", c.Name, c.BranchID)
}

// ParseBranchID parses a branch id written as hex, with or without 0x.
func ParseBranchID(s string) (uint32, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || len(s) > maxBranchIDHexSize {
		return 0, fmt.Errorf("invalid branch id %q", s)
	}
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 0 || len(s) > branchIDHexDigits {
		return 0, fmt.Errorf("invalid branch id %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid branch id %q: %w", s, err)
	}
	return uint32(v), nil
}
