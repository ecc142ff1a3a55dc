package trash

// RadarrFormats returns the unwanted-release formats applied to Radarr's
// default quality profile. Scores of -10000 make a single match disqualify
// a release outright.
func RadarrFormats() []Format {
	return []Format{
		{
			TrashID: "ed38b889b31be83fda192888e2286d83",
			Name:    "BR-DISK",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("BR-DISK", `(?i)^(?!.*\b((?<!HD[._ -]|HD)DVD|BDRip|720p|MKV|XviD|WMV|d3g|(BD)?REMUX|^(?=.*1080p)(?=.*HEVC)|[xh][-_. ]?26[45]|German.*[DM]L|((?<=\d{4}).*German.*([DM]L)?)(?=.*\b(720p|1080p|2160p)\b))\b)(((?=.*\b(Blu[-_. ]?ray|BD|HD[-_. ]?DVD)\b)(?=.*\b(AVC|HEVC|VC[-_. ]?1|MVC|MPEG[-_. ]?2|BDMV|ISO)\b))|^((?=.*\b(((?=.*\b((.*_)?COMPLETE.*|Dis[ck])\b)(?=.*(Blu[-_. ]?ray|HD[-_. ]?DVD)))|3D[-_. ]?BD|BR[-_. ]?DISK|Full[-_. ]?Blu[-_. ]?ray|^((?=.*((BD|UHD)[-_. ]?(25|50|66|100|ISO)))))))).*`),
			},
		},
		{
			TrashID: "90a6f9a284dff5103f6346090e6280c8",
			Name:    "LQ",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("LQ Groups", `(?i)\b(TBS|ION10|YIFY|YTS([._ ](MX|LT|AG))?|mSD|nikt0|RARBG|FGT|ProLover|STUTTERSHIT|nhanc3|GalaxyRG|RDN|jennaortega)\b`),
			},
		},
		{
			TrashID: "dc98083864ea246d05a42df0d05f81cc",
			Name:    "x265 (HD)",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("x265/HEVC", `(?i)[xh][ ._-]?265|\bHEVC(\b|\d)`),
				{
					Name:           "720/1080p",
					Implementation: "ResolutionSpecification",
					Required:       true,
					Fields:         map[string]any{"value": 720},
				},
			},
		},
		{
			TrashID: "b8cd450cbfa689c0259a01d9e29ba3d6",
			Name:    "3D",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("3D", `(?i)\b(3d|sbs|half[ .-]ou|half[ .-]sbs)\b`),
			},
		},
		{
			TrashID: "b6832f586342ef70d9c128d40c07b872",
			Name:    "Bad Dual Groups",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("Bad Dual Groups", `(?i)^(?=.*(dual[\. _-]audio|(fre|fra|dub)[\. _-]?(nch)?.*(eng(lish)?|vost(fr)?)|(eng(lish)?|vost(fr)?).*(fre|fra|dub)[\. _-]?(nch)?))(?=.*\b(YOGI|mHD|HQC|Zone80|PopHD|msd|BDCLUB)\b).*`),
			},
		},
		{
			TrashID: "ae9b7c9ebde1f3bd336a8cbd1ec4c5e5",
			Name:    "No-RlsGroup",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("No Release Group", `^(?!.*(-[a-z0-9]+$)).*`),
			},
		},
	}
}

// RadarrNaming is the recommended Radarr naming configuration.
type RadarrNaming struct {
	RenameMovies             bool
	ReplaceIllegalCharacters bool
	ColonReplacement         string
	StandardMovieFormat      string
	MovieFolderFormat        string
}

// RadarrNamingConfig returns the guide's naming scheme: tokens that keep
// IMDb IDs and full quality metadata in the file name.
func RadarrNamingConfig() RadarrNaming {
	return RadarrNaming{
		RenameMovies:             true,
		ReplaceIllegalCharacters: true,
		ColonReplacement:         "delete",
		StandardMovieFormat: "{Movie CleanTitle} {(Release Year)} {imdb-{ImdbId}} {edition-{Edition Tags}} " +
			"{[Custom Formats]}{[Quality Full]}{[MediaInfo 3D]}{[MediaInfo VideoDynamicRangeType]}" +
			"{[Mediainfo AudioCodec}{ Mediainfo AudioChannels]}{[Mediainfo VideoCodec]}{-Release Group}",
		MovieFolderFormat: "{Movie CleanTitle} ({Release Year})",
	}
}
