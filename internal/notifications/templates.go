package notifications

import "regexp"

// Template holds the per-event message bodies. An empty field disables that
// channel for the event.
type Template struct {
	EmailSubject string
	EmailBody    string
	SMSBody      string
}

// Lifecycle events the dispatcher knows how to announce.
const (
	EventIssued   = "issued"
	EventRevoked  = "revoked"
	EventReissued = "reissued"
)

var defaultTemplates = map[string]Template{
	EventIssued: {
		EmailSubject: "Your consultant certificate has been issued",
		EmailBody: "Hello {consultant_name},\n\n" +
			"We are pleased to let you know that your consultant certificate" +
			" {certificate_reference} was issued on {issued_on}.\n" +
			"You can download the certificate from your dashboard or verify it" +
			" online using {verification_url}.\n\n" +
			"Regards,\nConsultant Applications Team",
		SMSBody: "Your consultant certificate {certificate_reference} was issued on {issued_on}." +
			" Access it from your dashboard.",
	},
	EventRevoked: {
		EmailSubject: "Important update about your consultant certificate",
		EmailBody: "Hello {consultant_name},\n\n" +
			"Your consultant certificate {certificate_reference} was revoked on {status_on}.\n" +
			"{reason_block}If you have any questions please contact our support team.\n\n" +
			"Regards,\nConsultant Applications Team",
		SMSBody: "Your consultant certificate {certificate_reference} was revoked. {short_reason}",
	},
	EventReissued: {
		EmailSubject: "Your consultant certificate has been reissued",
		EmailBody: "Hello {consultant_name},\n\n" +
			"We have reissued your consultant certificate {certificate_reference} on {issued_on}.\n" +
			"Download the updated document from your dashboard or verify it online" +
			" using {verification_url}.\n\n" +
			"{reason_block}Regards,\nConsultant Applications Team",
		SMSBody: "Your consultant certificate {certificate_reference} has been reissued." +
			" Please download the updated copy.",
	},
}

// Templates merges event overrides onto the defaults. Only non-empty override
// fields replace the default text.
func Templates(overrides map[string]Template) map[string]Template {
	merged := make(map[string]Template, len(defaultTemplates))
	for event, tmpl := range defaultTemplates {
		merged[event] = tmpl
	}
	for event, override := range overrides {
		tmpl := merged[event]
		if override.EmailSubject != "" {
			tmpl.EmailSubject = override.EmailSubject
		}
		if override.EmailBody != "" {
			tmpl.EmailBody = override.EmailBody
		}
		if override.SMSBody != "" {
			tmpl.SMSBody = override.SMSBody
		}
		merged[event] = tmpl
	}
	return merged
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// interpolate fills {placeholder} slots from the render context. A key absent
// from the context renders as an empty string, never an error.
func interpolate(template string, context map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		return context[key]
	})
}
