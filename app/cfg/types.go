package cfg

type Cfg struct {
	// Podcast configuration
	ConfigPath string

	// Application configuration
	Port         string
	BaseUrl      string
	OutputDir    string
	CachePath    string
	CacheTTL     int
	QueryLimit   int
	APIAccessKey string
	Build        bool

	// Application metadata
	Environment string
	Timezone    string
	Debug       bool
	Version     string
}
