package model

// Session is a scheduled, capacity-limited screening of a film.
// Available is the only mutable field in the whole catalog: it is
// decremented by purchases and must always satisfy
// 0 <= Available <= Total.
//
// NOTE: StartsAt is stored and served as the DB string
// "2006-01-02 15:04" (UTC); the schedule is display data, nothing
// computes with it.
type Session struct {
	ID        uint64 `json:"id"`              // sessions.id
	FilmID    uint64 `json:"film_id"`         // sessions.film_id
	StartsAt  string `json:"schedule_time"`   // sessions.starts_at
	Total     uint32 `json:"total_capacity"`  // sessions.total_capacity
	Available uint32 `json:"available_count"` // sessions.available_count
}
