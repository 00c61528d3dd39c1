package catalog

// DefaultPath is searched when no catalog path is configured
const DefaultPath = "catalog"

// Config contains catalog path configuration
type Config struct {
	Paths []string `yaml:"paths"`
}

// GetPaths returns all configured catalog paths
func (c *Config) GetPaths() []string {
	if c == nil || len(c.Paths) == 0 {
		return []string{DefaultPath}
	}

	return c.Paths
}
