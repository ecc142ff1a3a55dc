package trash

// SonarrFormats returns the unwanted-release formats applied to Sonarr's
// default quality profile.
func SonarrFormats() []Format {
	return []Format{
		{
			TrashID: "85c61753df5da1fb2aab6f2a47426b09",
			Name:    "BR-DISK",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("BR-DISK", `(?i)\b(COMPLETE.?BLURAY|BD25|BD50|BDMV|BR.?DISK|FULL.?BLURAY|UHD(25|50|66|100))\b`),
			},
		},
		{
			TrashID: "9c11cd3f07101cdba90a2d81cf0e56b4",
			Name:    "LQ",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("LQ Groups", `(?i)\b(TBS|ION10|YIFY|YTS([._ ](MX|LT|AG))?|mSD|nikt0|RARBG|FGT|STUTTERSHIT|GalaxyTV|RDN|jennaortega)\b`),
			},
		},
		{
			TrashID: "47435ece6b99a0b477caf360e79ba0bb",
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
			TrashID: "fbcb31d8dabd2a319072b84fc0b7249c",
			Name:    "Extras",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("Extras", `(?i)\b(Extras|Trailers)\b`),
			},
		},
		{
			TrashID: "32b367365729d530ca1c124a0b180c64",
			Name:    "Bad Dual Groups",
			Score:   -10000,
			Specifications: []Specification{
				releaseTitleSpec("Bad Dual Groups", `(?i)^(?=.*(dual[\. _-]audio|(fre|fra|dub)[\. _-]?(nch)?.*(eng(lish)?|vost(fr)?)))(?=.*\b(YOGI|mHD|HQC|Zone80|PopHD|msd|BDCLUB)\b).*`),
			},
		},
	}
}

// SonarrNaming is the recommended Sonarr naming configuration.
type SonarrNaming struct {
	RenameEpisodes           bool
	ReplaceIllegalCharacters bool
	MultiEpisodeStyle        int64
	StandardEpisodeFormat    string
	DailyEpisodeFormat       string
	AnimeEpisodeFormat       string
	SeriesFolderFormat       string
	SeasonFolderFormat       string
	SpecialsFolderFormat     string
}

// SonarrNamingConfig returns the guide's naming scheme. MultiEpisodeStyle 5
// is "prefixed range" (S01E01-E03).
func SonarrNamingConfig() SonarrNaming {
	return SonarrNaming{
		RenameEpisodes:           true,
		ReplaceIllegalCharacters: true,
		MultiEpisodeStyle:        5,
		StandardEpisodeFormat: "{Series TitleYear} - S{season:00}E{episode:00} - {Episode CleanTitle} " +
			"[{Custom Formats }{Quality Full}]{[MediaInfo VideoDynamicRangeType]}" +
			"{[Mediainfo AudioCodec}{ Mediainfo AudioChannels]}{[MediaInfo VideoCodec]}{-Release Group}",
		DailyEpisodeFormat: "{Series TitleYear} - {Air-Date} - {Episode CleanTitle} " +
			"[{Custom Formats }{Quality Full}]{[MediaInfo VideoDynamicRangeType]}" +
			"{[Mediainfo AudioCodec}{ Mediainfo AudioChannels]}{[MediaInfo VideoCodec]}{-Release Group}",
		AnimeEpisodeFormat: "{Series TitleYear} - S{season:00}E{episode:00} - {absolute:000} - {Episode CleanTitle} " +
			"[{Custom Formats }{Quality Full}]{[MediaInfo VideoDynamicRangeType]}" +
			"[{MediaInfo VideoBitDepth}bit]{[MediaInfo VideoCodec]}[{Mediainfo AudioCodec} { Mediainfo AudioChannels}]" +
			"{MediaInfo AudioLanguages}{-Release Group}",
		SeriesFolderFormat:   "{Series TitleYear} [imdb-{ImdbId}]",
		SeasonFolderFormat:   "Season {season:00}",
		SpecialsFolderFormat: "Specials",
	}
}
