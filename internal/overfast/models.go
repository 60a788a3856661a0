package overfast

// Hero is one entry of GET /heroes.
type Hero struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Portrait string `json:"portrait"`
	Role     string `json:"role"`
}

// Role is one entry of GET /roles.
type Role struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Gamemode is one entry of GET /gamemodes.
type Gamemode struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Screenshot  string `json:"screenshot,omitempty"`
}

// Map is one entry of GET /maps.
type Map struct {
	Name        string   `json:"name"`
	Screenshot  string   `json:"screenshot"`
	Gamemodes   []string `json:"gamemodes"`
	Location    string   `json:"location"`
	CountryCode string   `json:"country_code,omitempty"`
}
