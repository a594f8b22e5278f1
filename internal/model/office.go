package model

// Office is a physical location where sessions are held.  Offices are
// static reference data owned by administrators; events reference them
// by id and users may pick one as their preferred office.
//
// Fields:
//
//	ID      – primary key identifier.
//	Name    – short display name (e.g. a city or a building).
//	Address – full postal address.
type Office struct {
	ID      uint64 // offices.id
	Name    string // offices.name
	Address string // offices.address
}
