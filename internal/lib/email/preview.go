package email

// PreviewData contains sample template data for local preview/testing.
//
//	templateName -> (templateVariableName -> exampleValue)
var PreviewData = map[Template]map[string]string{
	TemplateSyncFailure: {
		"Kind":     "magazine",
		"ID":       "42",
		"Op":       "upsert",
		"Attempts": "6",
		"Reason":   "magazine upsert: search index unavailable",
	},
}
