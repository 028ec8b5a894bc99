package export

import "strings"

// NameSeparator replaces runs of whitespace in document names.
const NameSeparator = "_"

// DocumentName derives the PDF file name from the itinerary title.
func DocumentName(title string) string {
	name := strings.Join(strings.Fields(title), NameSeparator)
	if name == "" {
		name = "itinerary"
	}
	return name + ".pdf"
}
