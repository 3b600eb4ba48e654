package domain

// UnknownCategoryName is the designated fallback category. It is seeded by
// migration and must always exist.
const UnknownCategoryName = "Unknown"

// Category classifies ledger entries. Description holds the external
// classification code (e.g. GENERAL_MERCHANDISE_SUPERSTORES) used when
// resolving inbound sync records; matching is case-insensitive.
type Category struct {
	CategoryID  string `json:"categoryID"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	AuditFields
}
