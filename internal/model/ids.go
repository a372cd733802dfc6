package model

import "github.com/google/uuid"

// PaperID, ChunkID and TenantID are distinct UUID-backed identifier types so
// the compiler catches a paper ID passed where a tenant ID is expected.
type PaperID uuid.UUID

type ChunkID uuid.UUID

type TenantID uuid.UUID

func (id PaperID) String() string  { return uuid.UUID(id).String() }
func (id ChunkID) String() string  { return uuid.UUID(id).String() }
func (id TenantID) String() string { return uuid.UUID(id).String() }

// NewPaperID, NewChunkID and NewTenantID mint fresh random identifiers.
func NewPaperID() PaperID   { return PaperID(uuid.New()) }
func NewChunkID() ChunkID   { return ChunkID(uuid.New()) }
func NewTenantID() TenantID { return TenantID(uuid.New()) }

// ParsePaperID parses a canonical UUID string into a PaperID.
func ParsePaperID(s string) (PaperID, error) {
	u, err := uuid.Parse(s)
	return PaperID(u), err
}

// ParseChunkID parses a canonical UUID string into a ChunkID.
func ParseChunkID(s string) (ChunkID, error) {
	u, err := uuid.Parse(s)
	return ChunkID(u), err
}

// ParseTenantID parses a canonical UUID string into a TenantID.
func ParseTenantID(s string) (TenantID, error) {
	u, err := uuid.Parse(s)
	return TenantID(u), err
}
