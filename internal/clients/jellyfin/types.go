package jellyfin

// PublicSystemInfo is the unauthenticated system description. The wizard
// flag is what tells easiarr whether first-run setup is still pending.
type PublicSystemInfo struct {
	ID                     string `json:"Id"`
	ServerName             string `json:"ServerName"`
	Version                string `json:"Version"`
	ProductName            string `json:"ProductName"`
	OperatingSystem        string `json:"OperatingSystem"`
	StartupWizardCompleted bool   `json:"StartupWizardCompleted"`
}

// Library describes one media library to create.
type Library struct {
	Name           string
	CollectionType string
	Path           string
}

type startupConfiguration struct {
	UICulture                 string `json:"UICulture"`
	MetadataCountryCode       string `json:"MetadataCountryCode"`
	PreferredMetadataLanguage string `json:"PreferredMetadataLanguage"`
}

type startupUser struct {
	Name     string `json:"Name"`
	Password string `json:"Password"`
}

type startupRemoteAccess struct {
	EnableRemoteAccess         bool `json:"EnableRemoteAccess"`
	EnableAutomaticPortMapping bool `json:"EnableAutomaticPortMapping"`
}

type authRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type authResponse struct {
	AccessToken string `json:"AccessToken"`
	User        struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	} `json:"User"`
}

type apiKeyList struct {
	Items []apiKey `json:"Items"`
}

type apiKey struct {
	AccessToken string `json:"AccessToken"`
	AppName     string `json:"AppName"`
}

type virtualFolder struct {
	Name           string   `json:"Name"`
	CollectionType string   `json:"CollectionType"`
	Locations      []string `json:"Locations"`
}

type addVirtualFolderRequest struct {
	LibraryOptions libraryOptions `json:"LibraryOptions"`
}

type libraryOptions struct {
	PathInfos []pathInfo `json:"PathInfos"`
}

type pathInfo struct {
	Path string `json:"Path"`
}
