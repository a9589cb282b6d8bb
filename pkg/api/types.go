package api

const (
	DefaultLoginURL     = "https://login.salesforce.com"
	DefaultAPIVersion   = "59.0"
	DefaultCacheControl = CacheControlPrivate

	CacheControlPublic  = "Public"
	CacheControlPrivate = "Private"

	// ContentTypeZip is the declared content type of every published archive.
	ContentTypeZip = "application/zip"

	// MetadataTypeStaticResource is the metadata type artifacts are upserted as.
	MetadataTypeStaticResource = "StaticResource"
)

// Config is the sfpublish configuration file format.
type Config struct {
	Salesforce SalesforceConfig `yaml:"salesforce"`
	Resources  []ResourceSpec   `yaml:"resources"`
	Debug      bool             `yaml:"debug"`

	// Set by the loader, not from the file.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// SalesforceConfig holds the endpoint credentials.
type SalesforceConfig struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Token      string `yaml:"token"`
	LoginURL   string `yaml:"loginUrl"`
	APIVersion string `yaml:"apiVersion"`
}

// Secret is the password with the security token appended, as the login call expects it.
func (c SalesforceConfig) Secret() string {
	return c.Password + c.Token
}

// ResourceSpec describes one named bundle of files.
type ResourceSpec struct {
	Name         string   `yaml:"name"`
	Files        []string `yaml:"files"`
	Exclude      []string `yaml:"exclude"`
	BasePath     string   `yaml:"basePath"`
	CacheControl string   `yaml:"cacheControl"`
}

// ResolvedFile maps a file on disk to its location inside the archive.
type ResolvedFile struct {
	SourcePath  string
	ArchivePath string
}

// ResolvedResource is a ResourceSpec after glob expansion.
type ResolvedResource struct {
	Name         string
	CacheControl string
	Files        []ResolvedFile
}

// Artifact is the packaged, transport-ready form of one resource.
type Artifact struct {
	FullName     string
	Content      string // base64 of the zip archive
	ContentType  string
	CacheControl string

	Digest string // blake3-256 of the raw archive, hex
	Size   int    // raw archive size in bytes
}
