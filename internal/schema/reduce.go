package schema

// Reduce flattens issues into one message per top-level field. Issues are
// taken in order; the first message for a field wins and root issues are
// skipped.
func Reduce(issues []Issue) map[string]string {
	out := make(map[string]string, len(issues))
	for _, i := range issues {
		field := i.Field()
		if field == "" {
			continue
		}
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = i.Message
	}
	return out
}
