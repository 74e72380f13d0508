package knowledge

import "strings"

// NormalizeKey converts a raw class label into the canonical lookup key:
// lowercase, single-underscore delimited, no leading or trailing underscores.
// The transform is idempotent.
//
//	"Pepper__bell___healthy" -> "pepper_bell_healthy"
func NormalizeKey(label string) string {
	key := strings.ToLower(label)
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}

	return strings.Trim(key, "_")
}

// ExtractCropName derives a human-readable crop name from a class label by
// taking the segment before the first underscore.
//
//	"Tomato_Early_blight" -> "Tomato"
func ExtractCropName(label string) string {
	crop, _, _ := strings.Cut(label, "_")
	if crop == "" {
		return "Unknown"
	}

	return capitalize(crop)
}

func capitalize(s string) string {
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
