package extractor

// StateDirectory maps a lower-cased, trimmed state name to the absolute URL
// of that state's listing page.
type StateDirectory map[string]string

// SiteDetailFields is the raw field set extracted from one site detail page.
// Locality and region are kept separate here; composing them into a single
// address string is the caller's concern.
type SiteDetailFields struct {
	Category string
	Name     string
	Locality string
	Region   string
	Zipcode  string
	Phone    string
}
