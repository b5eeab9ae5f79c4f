package models

// DirectoryEntry is one row of the scraped campus directory.
// Key is the uppercased acronym or building name it is stored under.
// Order is the position at which Key first appeared in the scrape; a later
// row with the same key replaces URL and Name but keeps Order.
type DirectoryEntry struct {
	Key   string
	URL   string
	Name  string
	Order int
}

// Directory maps uppercased acronyms and building names to their entry.
// Every building appears twice: once under its acronym, once under its name.
type Directory map[string]DirectoryEntry

// Building is the resolved result of one lookup.
type Building struct {
	Name    string
	Key     string
	Address string
	MapURL  string
}
