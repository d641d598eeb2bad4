package domain

// Publication is a document of the digital library: theses, reports and
// other works hosted as PDF.
type Publication struct {
	ID          string
	Title       string
	Slug        string
	Type        string
	Abstract    string
	Year        int
	Language    string
	Country     string
	Authors     []string
	Institution string
	AccessLevel string // OPEN, REGISTERED or RESTRICTED
	Views       int
	Downloads   int
	Verified    bool
	Keywords    []string
	DOI         string
}
