package places

import "fmt"

// Result is the decoded shape of one radius search response. Only the
// fields this tool renders are modelled; the raw response is what gets
// cached, so unmodelled fields survive round trips untouched.
type Result struct {
	SearchResults []SearchResult `json:"searchResults"`
}

type SearchResult struct {
	Fields PlaceFields `json:"fields"`
}

// PlaceFields carries the business attributes of one nearby place. All of
// them are optional in the upstream API.
type PlaceFields struct {
	Name     string `json:"name"`
	Category string `json:"group_sic_code_name_ext"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// Placeholders substituted for absent optional fields.
const (
	placeholderName     = "no name"
	placeholderCategory = "no category"
	placeholderAddress  = "no address"
	placeholderCity     = "no city"
)

// Describe renders the one-line description of a place as
// "{name} ({category}): {address}, {city}", substituting a fixed
// placeholder for each absent field.
func (f PlaceFields) Describe() string {
	return fmt.Sprintf("%s (%s): %s, %s",
		orPlaceholder(f.Name, placeholderName),
		orPlaceholder(f.Category, placeholderCategory),
		orPlaceholder(f.Address, placeholderAddress),
		orPlaceholder(f.City, placeholderCity),
	)
}

func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
