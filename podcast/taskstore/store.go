package taskstore

import "github.com/dgnsrekt/educast/podcast"

// Open builds the task store selected by the config. The memory backend is
// the default; sqlite persists records across restarts.
func Open(cfg podcast.StoreConfig) (podcast.TaskStore, error) {
	switch cfg.Backend {
	case "sqlite":
		return OpenSQLite(cfg.Path)
	default:
		return podcast.NewMemoryStore(), nil
	}
}
