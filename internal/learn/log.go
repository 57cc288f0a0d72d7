package learn

// Structured log field names shared by the service and its callers.
const (
	FieldCardID    = "card_id"
	FieldContentID = "content_id"
	FieldRating    = "rating"
	FieldInterval  = "interval"
	FieldXP        = "xp"
	FieldCount     = "count"
)
