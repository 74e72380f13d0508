package knowledge

import "testing"

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		name  string
		label string
		want  string
	}{
		{"simple", "Tomato_Early_blight", "tomato_early_blight"},
		{"collapses underscore runs", "Pepper__bell___healthy", "pepper_bell_healthy"},
		{"trims edges", "_Potato___healthy_", "potato_healthy"},
		{"already normalized", "pepper_bell_healthy", "pepper_bell_healthy"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeKey(tc.label); got != tc.want {
				t.Fatalf("NormalizeKey(%q) = %q, want %q", tc.label, got, tc.want)
			}
		})
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	labels := []string{
		"Pepper__bell___healthy",
		"Tomato__Tomato_YellowLeaf__Curl_Virus",
		"Tomato_Spider_mites_Two_spotted_spider_mite",
	}

	for _, label := range labels {
		once := NormalizeKey(label)
		if twice := NormalizeKey(once); twice != once {
			t.Fatalf("NormalizeKey is not idempotent for %q: %q -> %q", label, once, twice)
		}
	}
}

func TestExtractCropName(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Tomato_Early_blight", "Tomato"},
		{"Pepper__bell___healthy", "Pepper"},
		{"cabbage", "Cabbage"},
		{"", "Unknown"},
	}

	for _, tc := range cases {
		if got := ExtractCropName(tc.label); got != tc.want {
			t.Fatalf("ExtractCropName(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}
