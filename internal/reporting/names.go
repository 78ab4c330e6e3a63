package reporting

import (
	"strings"

	"github.com/digimosa/doc-redact/internal/models"
)

// CategoryTitles are the report headings for text categories.
var CategoryTitles = map[string]string{
	string(models.TypeSSN):           "SOCIAL SECURITY NUMBERS",
	string(models.TypeAccountNumber): "ACCOUNT NUMBERS",
	string(models.TypeCreditCard):    "CREDIT CARD NUMBERS",
	string(models.TypeIBAN):          "IBANS",
	string(models.TypeSwiftCode):     "SWIFT CODES",
	string(models.TypeRoutingNumber): "ROUTING NUMBERS",
	string(models.TypePhone):         "PHONE NUMBERS",
	string(models.TypeEmail):         "EMAIL ADDRESSES",
	string(models.TypeDateOfBirth):   "DATES OF BIRTH",
	string(models.TypeDriverLicense): "DRIVER LICENSE NUMBERS",
	string(models.TypePassport):      "PASSPORT NUMBERS",
	string(models.TypeName):          "PERSONAL NAMES",
	string(models.TypeOrganization):  "ORGANIZATIONS",
	string(models.TypeLocation):      "ADDRESSES",
	string(models.TypeImageMetadata): "IMAGE METADATA",
}

// VisualTitles are the report headings for visual finding types.
var VisualTitles = map[string]string{
	"signature":       "SIGNATURES",
	"stamp":           "STAMPS/SEALS",
	"handwriting":     "HANDWRITING",
	"watermark":       "WATERMARKS",
	"gps_location":    "GPS LOCATIONS",
	"device_identity": "DEVICE IDENTIFIERS",
}

// MethodNames are the human readable detection method labels.
var MethodNames = map[string]string{
	models.MethodRegex:      "Regex",
	models.MethodChecksum:   "Checksum-validated pattern",
	models.MethodNER:        "Entity recognition",
	models.MethodLLM:        "LLM-verified",
	models.MethodMetadata:   "Image metadata",
	models.MethodAnnotation: "PDF annotation",
}

func titleFor(table map[string]string, key string) string {
	if t, ok := table[key]; ok {
		return t
	}
	return strings.ToUpper(strings.ReplaceAll(key, "_", " "))
}

// MethodName returns the display label for a method tag.
func MethodName(method string) string {
	if n, ok := MethodNames[method]; ok {
		return n
	}
	return method
}

// CategoryTitle returns the display heading for a text category.
func CategoryTitle(category string) string {
	return titleFor(CategoryTitles, category)
}

// VisualTitle returns the display heading for a visual finding type.
func VisualTitle(kind string) string {
	return titleFor(VisualTitles, kind)
}
