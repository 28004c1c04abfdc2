package models

// Category is a label reminders reference by name. The engine does not
// enforce referential integrity beyond best-effort rename propagation.
type Category struct {
	CategoryID   int    `json:"category_id"`
	UserID       int64  `json:"user_id"`
	CategoryName string `json:"category_name"`
	UsageCount   int    `json:"usage_count"`
}
