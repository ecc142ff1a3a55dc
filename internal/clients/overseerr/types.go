package overseerr

// ArrInstance describes one Radarr or Sonarr server Overseerr should send
// requests to. Profile and directory come from the target app itself.
type ArrInstance struct {
	Name        string
	Hostname    string
	Port        int
	APIKey      string
	ProfileID   int64
	ProfileName string
	Directory   string
}

type statusResponse struct {
	Version string `json:"version"`
}

type publicSettings struct {
	Initialized bool `json:"initialized"`
}

type mainSettings struct {
	APIKey string `json:"apiKey"`
}

type plexAuthRequest struct {
	AuthToken string `json:"authToken"`
}

type plexLibrary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type radarrSettings struct {
	ID                  int64  `json:"id,omitempty"`
	Name                string `json:"name"`
	Hostname            string `json:"hostname"`
	Port                int    `json:"port"`
	APIKey              string `json:"apiKey"`
	UseSSL              bool   `json:"useSsl"`
	BaseURL             string `json:"baseUrl"`
	ActiveProfileID     int64  `json:"activeProfileId"`
	ActiveProfileName   string `json:"activeProfileName"`
	ActiveDirectory     string `json:"activeDirectory"`
	Is4K                bool   `json:"is4k"`
	MinimumAvailability string `json:"minimumAvailability"`
	IsDefault           bool   `json:"isDefault"`
	SyncEnabled         bool   `json:"syncEnabled"`
}

type sonarrSettings struct {
	ID                      int64  `json:"id,omitempty"`
	Name                    string `json:"name"`
	Hostname                string `json:"hostname"`
	Port                    int    `json:"port"`
	APIKey                  string `json:"apiKey"`
	UseSSL                  bool   `json:"useSsl"`
	BaseURL                 string `json:"baseUrl"`
	ActiveProfileID         int64  `json:"activeProfileId"`
	ActiveProfileName       string `json:"activeProfileName"`
	ActiveDirectory         string `json:"activeDirectory"`
	ActiveLanguageProfileID int64  `json:"activeLanguageProfileId"`
	EnableSeasonFolders     bool   `json:"enableSeasonFolders"`
	Is4K                    bool   `json:"is4k"`
	IsDefault               bool   `json:"isDefault"`
	SyncEnabled             bool   `json:"syncEnabled"`
}
