package domain

type Note struct {
	Title   string
	Content string
}

// Entry is a note as listed on the wire: its current 1-based position and
// title. Positions shift when earlier notes are deleted.
type Entry struct {
	Index int
	Title string
}
