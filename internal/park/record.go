package park

import (
	"encoding/json"
	"fmt"
)

// Site is one national park service site. Records are immutable once
// constructed and carry no identity beyond attribute equality.
//
// Category may be blank for some sites; Zipcode keeps whatever form the
// source page uses (e.g. "49931" or "82190-0168").
type Site struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Zipcode  string `json:"zipcode"`
	Phone    string `json:"phone"`
}

func NewSite(category, name, address, zipcode, phone string) Site {
	return Site{
		Category: category,
		Name:     name,
		Address:  address,
		Zipcode:  zipcode,
		Phone:    phone,
	}
}

// Info renders the one-line menu representation of a site, e.g.
// "Isle Royale (National Park): Houghton, MI 49931".
func (s Site) Info() string {
	return fmt.Sprintf("%s (%s): %s %s", s.Name, s.Category, s.Address, s.Zipcode)
}

// Attrs returns the attribute mapping the site is cached as.
func (s Site) Attrs() map[string]string {
	return map[string]string{
		"category": s.Category,
		"name":     s.Name,
		"address":  s.Address,
		"zipcode":  s.Zipcode,
		"phone":    s.Phone,
	}
}

// DecodeSite reconstructs a site from its cached attribute mapping.
// Cached entries are not trusted blindly: every one of the five attribute
// keys must be present, or the entry is rejected so callers can fall back
// to refetching.
func DecodeSite(raw json.RawMessage) (Site, error) {
	var attrs map[string]string
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return Site{}, fmt.Errorf("malformed site entry: %w", err)
	}
	return SiteFromAttrs(attrs)
}

// SiteFromAttrs validates and converts an attribute mapping back to a Site.
func SiteFromAttrs(attrs map[string]string) (Site, error) {
	for _, key := range []string{"category", "name", "address", "zipcode", "phone"} {
		if _, ok := attrs[key]; !ok {
			return Site{}, fmt.Errorf("site entry missing %q attribute", key)
		}
	}
	return NewSite(
		attrs["category"],
		attrs["name"],
		attrs["address"],
		attrs["zipcode"],
		attrs["phone"],
	), nil
}
