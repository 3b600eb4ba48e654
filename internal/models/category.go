package models

// Category is the DB representation of an entry classification.
type Category struct {
	CategoryID  string `db:"category_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	AuditFields
}
