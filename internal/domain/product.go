package domain

// ProductMetadata is the canonical record of product facts for one URL.
type ProductMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
	URL         string   `json:"url"`
}

// Clone returns a copy that does not share slices with m.
func (m ProductMetadata) Clone() ProductMetadata {
	m.Images = append([]string{}, m.Images...)
	m.Features = append([]string{}, m.Features...)
	return m
}

// Empty reports whether nothing but the URL is known.
func (m ProductMetadata) Empty() bool {
	return m.Title == "" && m.Description == "" && m.Price == "" && m.Brand == "" &&
		len(m.Images) == 0 && len(m.Features) == 0
}
