package cfg

type Cfg struct {
	// HTTP server
	Port         string
	APIAccessKey string

	// Storage
	StorageBackend string
	DataDir        string
	SQLitePath     string

	// Aggregation
	SourcesDir   string
	SyncInterval int
	MaxJobs      int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
