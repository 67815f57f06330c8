package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BuildType identifies the platform a downloadable build targets. The
// "webgl" value is special: it never appears inside a game's build list
// (the playable WebGL build is tracked by the WebGLBuild flag) but is
// accepted as a filter token.
type BuildType string

const (
	BuildAmazon   BuildType = "amazon"
	BuildAndroid  BuildType = "android"
	BuildAppStore BuildType = "appstore"
	BuildLinux    BuildType = "linux"
	BuildMac      BuildType = "mac"
	BuildWebGL    BuildType = "webgl"
	BuildWindows  BuildType = "windows"
	BuildRemote   BuildType = "remote"
)

// KnownBuildType reports whether value is a recognized build filter token.
func KnownBuildType(value string) bool {
	switch BuildType(value) {
	case BuildAmazon, BuildAndroid, BuildAppStore, BuildLinux, BuildMac,
		BuildWebGL, BuildWindows, BuildRemote:
		return true
	}
	return false
}

// Build is one downloadable artifact attached to a game.
type Build struct {
	Type         BuildType `json:"type"`
	Link         string    `json:"link"`
	Instructions string    `json:"instructions,omitempty"`
}

// ContentKey names the optional supplementary material fields a game may
// carry. Filter requests select on their presence.
type ContentKey string

const (
	ContentLesson         ContentKey = "lesson"
	ContentParentingGuide ContentKey = "parentingGuide"
	ContentAnswerKey      ContentKey = "answerKey"
	ContentVideoTrailer   ContentKey = "videoTrailer"
)

// ParseContentKey validates a gameContent filter token.
func ParseContentKey(value string) (ContentKey, bool) {
	switch ContentKey(value) {
	case ContentLesson, ContentParentingGuide, ContentAnswerKey, ContentVideoTrailer:
		return ContentKey(value), true
	}
	return "", false
}

// Game is a catalog item. LowercaseName is always the lower-cased display
// name; uniqueness is enforced on it so names differing only by case
// collide.
type Game struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	LowercaseName  string      `json:"-"`
	Description    string      `json:"description"`
	Image          string      `json:"image"`
	ThemeIDs       []uuid.UUID `json:"themes,omitempty"`
	TagIDs         []uuid.UUID `json:"tags,omitempty"`
	Builds         []Build     `json:"builds,omitempty"`
	WebGLBuild     bool        `json:"webGLBuild"`
	RemoteURL      bool        `json:"remoteUrl"`
	Lesson         string      `json:"lesson,omitempty"`
	ParentingGuide string      `json:"parentingGuide,omitempty"`
	AnswerKey      string      `json:"answerKey,omitempty"`
	VideoTrailer   string      `json:"videoTrailer,omitempty"`
	Preview        bool        `json:"preview"`
	Popularity     int         `json:"popularity"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Normalize mirrors the lowercase sort key from the display name. Call it
// before any write; the store rejects rows where the mirror is stale.
func (g *Game) Normalize() {
	g.LowercaseName = strings.ToLower(g.Name)
}

// Content returns the value stored under a supplementary content key.
func (g *Game) Content(key ContentKey) string {
	switch key {
	case ContentLesson:
		return g.Lesson
	case ContentParentingGuide:
		return g.ParentingGuide
	case ContentAnswerKey:
		return g.AnswerKey
	case ContentVideoTrailer:
		return g.VideoTrailer
	}
	return ""
}

// HydratedGame is a game with its referenced themes and tags joined in,
// the shape the public gallery consumes.
type HydratedGame struct {
	Game
	Themes []Theme `json:"themes"`
	Tags   []Tag   `json:"tags"`
}
