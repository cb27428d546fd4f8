package blob

import "github.com/awantoch/formrelay/config"

func defaultArchive() config.ArchiveConfig {
	return config.Default().Archive
}
