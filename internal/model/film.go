package model

// Film is a bookable catalog entry. Films are created at seed time and
// read-only afterwards; tickets are sold against their sessions, never
// against the film itself.
//
// Fields:
//  ID       – primary key identifier.
//  Title    – film title.
//  Category – genre label, e.g. "Sci-Fi/Thriller".
//  Duration – running time in minutes.
type Film struct {
	ID       uint64 `json:"id"`               // films.id
	Title    string `json:"title"`            // films.title
	Category string `json:"category"`         // films.category
	Duration uint32 `json:"duration_minutes"` // films.duration_minutes
}
