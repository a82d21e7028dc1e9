package relstore

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the engine's configuration surface: the knobs an embedding host
// sets before constructing a Catalog/BufferPool pair. It never touches SQL
// text or a shell; loading a schema file is a separate, explicit call
// (Catalog.LoadSchema).
type Config struct {
	// PageSize is the fixed byte size of every page, P in the spec.
	PageSize int
	// BufferPoolPages is the buffer pool's fixed page capacity, C.
	BufferPoolPages int
	// LockWaitBase is the initial wait budget T0 for a page-lock
	// acquisition attempt before the deadlock arbiter considers the
	// waiting transaction a suspect.
	LockWaitBase time.Duration
	// LockWaitCeiling bounds how large the doubling wait budget may grow
	// before a suspected transaction is aborted unconditionally.
	LockWaitCeiling time.Duration
	// CatalogDir is the catalog directory setting (ENGINE_CATALOG_DIR).
	// Catalog.LoadSchema does not read it: it resolves each table's
	// "<name>.dat" heap file against the directory of the schema file.
	CatalogDir string
}

// DefaultConfig returns the spec's defaults: P = 4096, T0 ~= 200ms, ceiling
// ~= 1024*T0.
func DefaultConfig() Config {
	return Config{
		PageSize:        4096,
		BufferPoolPages: 64,
		LockWaitBase:    200 * time.Millisecond,
		LockWaitCeiling: 1024 * 200 * time.Millisecond,
		CatalogDir:      ".",
	}
}

// LoadConfig builds a Config from DefaultConfig overridden by the
// ENGINE_PAGE_SIZE, ENGINE_BUFFERPOOL_PAGES, ENGINE_LOCK_TIMEOUT_MS, and
// ENGINE_CATALOG_DIR environment variables, if set.
func LoadConfig() Config {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("page_size", cfg.PageSize)
	v.SetDefault("bufferpool_pages", cfg.BufferPoolPages)
	v.SetDefault("lock_timeout_ms", cfg.LockWaitBase.Milliseconds())
	v.SetDefault("catalog_dir", cfg.CatalogDir)

	cfg.PageSize = v.GetInt("page_size")
	cfg.BufferPoolPages = v.GetInt("bufferpool_pages")
	cfg.LockWaitBase = time.Duration(v.GetInt64("lock_timeout_ms")) * time.Millisecond
	cfg.LockWaitCeiling = 1024 * cfg.LockWaitBase
	cfg.CatalogDir = v.GetString("catalog_dir")

	return cfg
}

// PageSize is the process-wide page size used by HeapPage/HeapFile layout
// math. It defaults to the spec's P = 4096 and is set once by the host via
// SetPageSize before any Catalog/BufferPool is constructed; the engine
// itself never changes it mid-run; tuples and page layouts it produces are
// only inter-compatible for a single PageSize.
var PageSize = 4096

// SetPageSize overrides the process-wide page size. Intended to be called
// once, at startup, before any HeapFile is opened.
func SetPageSize(bytes int) {
	PageSize = bytes
}
