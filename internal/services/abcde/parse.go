package abcde

import (
	"regexp"
	"strings"
)

const (
	// UnknownArtist is the artist reported when log extraction finds no match.
	UnknownArtist = "Unknown Artist"
	// UnknownAlbum is the album reported when log extraction finds no match.
	UnknownAlbum = "Unknown Album"
)

// Metadata holds the artist, album, and cover image extracted from a rip log.
type Metadata struct {
	Artist   string
	Album    string
	CoverURL string
}

var (
	// abcde prints the selected CDDB candidate as
	// "#1 (Musicbrainz): ---- Artist / Album ----".
	metadataPattern = regexp.MustCompile(`#1 \(.*?\): ---- (.+?) / (.+?) ----`)
	coverPattern    = regexp.MustCompile(`cover URL: (https?://\S+)`)
)

// ParseLog extracts artist, album, and cover URL from abcde output. Absent
// matches leave the Unknown defaults; the first occurrence of each pattern
// wins. Artist/album and cover extraction are independent.
func ParseLog(output string) Metadata {
	meta := Metadata{Artist: UnknownArtist, Album: UnknownAlbum}

	if m := metadataPattern.FindStringSubmatch(output); m != nil {
		meta.Artist = strings.TrimSpace(m[1])
		meta.Album = strings.TrimSpace(m[2])
	}
	if m := coverPattern.FindStringSubmatch(output); m != nil {
		meta.CoverURL = strings.TrimSpace(m[1])
	}
	return meta
}
