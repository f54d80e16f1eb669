package common

// IndicatorType is the kind of observable an indicator describes.
type IndicatorType string

const (
	IndicatorIP     IndicatorType = "ip"
	IndicatorDomain IndicatorType = "domain"
	IndicatorHash   IndicatorType = "hash"
	IndicatorURL    IndicatorType = "url"
)

var allowedTypes = [...]IndicatorType{IndicatorIP, IndicatorDomain, IndicatorHash, IndicatorURL}

// AllowedTypes returns the indicator types accepted by the normalizer.
func AllowedTypes() []IndicatorType {
	out := make([]IndicatorType, len(allowedTypes))
	copy(out, allowedTypes[:])
	return out
}

// ParseIndicatorType reports whether s (already trimmed and lowercased) names an allowed type.
func ParseIndicatorType(s string) (IndicatorType, bool) {
	for _, t := range AllowedTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// RiskLevel is the derived classification of an aggregated indicator.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Known category labels, most to least severe.
const (
	CategoryMalwareDownload = "malware_download"
	CategoryMalware         = "malware"
	CategoryC2              = "c2"
	CategoryCommandControl  = "command-and-control"
	CategoryBotnet          = "botnet"
	CategoryPhishing        = "phishing"
	CategorySpam            = "spam"
	CategorySuspicious      = "suspicious"
	CategoryUnknown         = "unknown"
)

var severityOrder = [...]string{
	CategoryMalwareDownload,
	CategoryMalware,
	CategoryC2,
	CategoryCommandControl,
	CategoryBotnet,
	CategoryPhishing,
	CategorySpam,
	CategorySuspicious,
	CategoryUnknown,
	"",
}

// SeverityOrder returns the category labels ordered from most to least severe.
func SeverityOrder() []string {
	out := make([]string, len(severityOrder))
	copy(out, severityOrder[:])
	return out
}
