package domain

import "testing"

func TestNormalizeMirrorsLowercaseName(t *testing.T) {
	game := Game{Name: "Gravity LAB"}
	game.Normalize()
	if game.LowercaseName != "gravity lab" {
		t.Errorf("expected lowercase mirror, got %q", game.LowercaseName)
	}
}

func TestKnownBuildType(t *testing.T) {
	for _, token := range []string{"amazon", "android", "appstore", "linux", "mac", "webgl", "windows", "remote"} {
		if !KnownBuildType(token) {
			t.Errorf("expected %q to be a known build type", token)
		}
	}
	for _, token := range []string{"", "Windows", "dreamcast"} {
		if KnownBuildType(token) {
			t.Errorf("expected %q to be rejected", token)
		}
	}
}

func TestParseContentKey(t *testing.T) {
	if _, ok := ParseContentKey("parentingGuide"); !ok {
		t.Error("expected parentingGuide to parse")
	}
	if _, ok := ParseContentKey("walkthrough"); ok {
		t.Error("expected walkthrough to be rejected")
	}
}

func TestContentLookup(t *testing.T) {
	game := Game{Lesson: "lesson.pdf", VideoTrailer: "trailer.mp4"}
	if game.Content(ContentLesson) != "lesson.pdf" {
		t.Errorf("unexpected lesson value: %q", game.Content(ContentLesson))
	}
	if game.Content(ContentAnswerKey) != "" {
		t.Errorf("expected empty answer key, got %q", game.Content(ContentAnswerKey))
	}
}

func TestTagTypeOpposite(t *testing.T) {
	if TagTypeCustom.Opposite() != TagTypeAccessibility {
		t.Error("custom must oppose accessibility")
	}
	if TagTypeAccessibility.Opposite() != TagTypeCustom {
		t.Error("accessibility must oppose custom")
	}
}
