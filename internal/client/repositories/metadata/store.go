package metadata

import (
	"context"
	"fmt"
)

// Open returns the Store for backend ("sqlite" or "bolt") at path.
func Open(ctx context.Context, backend, path string) (Store, error) {
	switch backend {
	case "sqlite":
		return OpenSQLite(ctx, path)
	case "bolt":
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", backend)
	}
}
