package model

// Coach describes an instructor.  Events carry the coach as a free-text
// label rather than a foreign key, and availability queries left-join this
// table on the name, so a coach row is optional metadata: an event whose
// label matches no row simply surfaces null coach details.
type Coach struct {
	ID          uint64  // coaches.id
	Name        string  // coaches.name (joined against events.coach)
	Description *string // coaches.description (nullable)
}
