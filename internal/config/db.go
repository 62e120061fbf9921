package config

const (
	// EngineMySQL selects the gorm mysql driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the gorm postgres driver.
	EnginePostgres = "postgres"
	// EngineSQLite selects the pure go sqlite driver.
	EngineSQLite = "sqlite"
)

// DB holds the primary database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Path       string // sqlite file, ":memory:" for tests
	GormEngine string
}

// Legacy holds the settings of the secondary read-only MySQL database
// containing the tbbiblia_pt and tbbiblia_en tables.
type Legacy struct {
	Enabled  bool
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}
