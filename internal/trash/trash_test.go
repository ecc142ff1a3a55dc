package trash

import (
	"regexp"
	"strings"
	"testing"
)

func TestRadarrFormatScores(t *testing.T) {
	tests := []struct {
		name    string
		trashID string
		score   int64
	}{
		{"BR-DISK", "ed38b889b31be83fda192888e2286d83", -10000},
		{"LQ", "90a6f9a284dff5103f6346090e6280c8", -10000},
		{"x265 (HD)", "dc98083864ea246d05a42df0d05f81cc", -10000},
		{"3D", "b8cd450cbfa689c0259a01d9e29ba3d6", -10000},
	}

	scores := ScoreSet(RadarrFormats())
	byName := make(map[string]Format)
	for _, f := range RadarrFormats() {
		byName[f.Name] = f
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := byName[tt.name]
			if !ok {
				t.Fatalf("format %q missing from Radarr table", tt.name)
			}
			if f.TrashID != tt.trashID {
				t.Errorf("TrashID = %q, want %q", f.TrashID, tt.trashID)
			}
			if got := scores[tt.trashID]; got != tt.score {
				t.Errorf("score = %d, want %d", got, tt.score)
			}
		})
	}
}

func TestSonarrFormatScores(t *testing.T) {
	tests := []struct {
		name    string
		trashID string
		score   int64
	}{
		{"BR-DISK", "85c61753df5da1fb2aab6f2a47426b09", -10000},
		{"LQ", "9c11cd3f07101cdba90a2d81cf0e56b4", -10000},
		{"x265 (HD)", "47435ece6b99a0b477caf360e79ba0bb", -10000},
	}

	scores := ScoreSet(SonarrFormats())
	byName := make(map[string]Format)
	for _, f := range SonarrFormats() {
		byName[f.Name] = f
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := byName[tt.name]
			if !ok {
				t.Fatalf("format %q missing from Sonarr table", tt.name)
			}
			if f.TrashID != tt.trashID {
				t.Errorf("TrashID = %q, want %q", f.TrashID, tt.trashID)
			}
			if got := scores[tt.trashID]; got != tt.score {
				t.Errorf("score = %d, want %d", got, tt.score)
			}
		})
	}
}

func TestFormatTablesWellFormed(t *testing.T) {
	for _, table := range []struct {
		name    string
		formats []Format
	}{
		{"radarr", RadarrFormats()},
		{"sonarr", SonarrFormats()},
	} {
		t.Run(table.name, func(t *testing.T) {
			seen := make(map[string]bool)
			for _, f := range table.formats {
				if f.TrashID == "" || f.Name == "" {
					t.Errorf("format %+v missing id or name", f)
				}
				if len(f.TrashID) != 32 {
					t.Errorf("format %q: trash id %q is not 32 hex chars", f.Name, f.TrashID)
				}
				if seen[f.TrashID] {
					t.Errorf("duplicate trash id %q", f.TrashID)
				}
				seen[f.TrashID] = true
				if len(f.Specifications) == 0 {
					t.Errorf("format %q has no specifications", f.Name)
				}
				if f.Score >= 0 {
					t.Errorf("format %q: unwanted formats carry negative scores, got %d", f.Name, f.Score)
				}
			}
		})
	}
}

func TestLQPatternMatchesKnownGroups(t *testing.T) {
	var lq Format
	for _, f := range RadarrFormats() {
		if f.Name == "LQ" {
			lq = f
		}
	}
	pattern, ok := lq.Specifications[0].Fields["value"].(string)
	if !ok {
		t.Fatal("LQ specification has no regex value")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("LQ regex does not compile: %v", err)
	}

	matches := []string{
		"Some.Movie.2023.1080p.WEB-DL.x264-YIFY",
		"Some.Movie.2023.720p.BluRay.YTS.MX",
		"Another.Movie.2020.1080p.GalaxyRG",
	}
	for _, rel := range matches {
		if !re.MatchString(rel) {
			t.Errorf("LQ pattern should match %q", rel)
		}
	}
	if re.MatchString("Some.Movie.2023.1080p.BluRay.x264-SPARKS") {
		t.Error("LQ pattern should not match a reputable group")
	}
}

func TestRadarrNamingConfig(t *testing.T) {
	n := RadarrNamingConfig()
	if !n.RenameMovies {
		t.Error("renaming must be enabled for the format to take effect")
	}
	for _, token := range []string{"{Movie CleanTitle}", "{imdb-{ImdbId}}", "{[Quality Full]}", "{-Release Group}"} {
		if !strings.Contains(n.StandardMovieFormat, token) {
			t.Errorf("StandardMovieFormat missing token %s", token)
		}
	}
	if n.MovieFolderFormat != "{Movie CleanTitle} ({Release Year})" {
		t.Errorf("MovieFolderFormat = %q", n.MovieFolderFormat)
	}
}

func TestSonarrNamingConfig(t *testing.T) {
	n := SonarrNamingConfig()
	if !n.RenameEpisodes {
		t.Error("renaming must be enabled for the format to take effect")
	}
	for _, token := range []string{"{Series TitleYear}", "S{season:00}E{episode:00}", "{-Release Group}"} {
		if !strings.Contains(n.StandardEpisodeFormat, token) {
			t.Errorf("StandardEpisodeFormat missing token %s", token)
		}
	}
	if !strings.Contains(n.AnimeEpisodeFormat, "{absolute:000}") {
		t.Error("AnimeEpisodeFormat must carry absolute numbering")
	}
	if n.SeasonFolderFormat != "Season {season:00}" {
		t.Errorf("SeasonFolderFormat = %q", n.SeasonFolderFormat)
	}
	if n.MultiEpisodeStyle != 5 {
		t.Errorf("MultiEpisodeStyle = %d, want prefixed range (5)", n.MultiEpisodeStyle)
	}
}
