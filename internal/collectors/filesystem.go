package collectors

import (
	"context"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

type filesystemDoc struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Free  plugin.Size `json:"free"`
	Avail plugin.Size `json:"avail"`
	Total plugin.Size `json:"total"`
}

// Filesystem reports space on mounted filesystems.
type Filesystem struct {
	src    sysinfo.Source
	logger *zap.Logger
}

// NewFilesystem creates a Filesystem collector.
func NewFilesystem(src sysinfo.Source, logger *zap.Logger) *Filesystem {
	return &Filesystem{src: src, logger: orNop(logger)}
}

func (c *Filesystem) Name() string        { return NameFilesystem }
func (c *Filesystem) Description() string { return "free, available and total space per mount" }

// Collect skips filesystems with a zero total, which covers pseudo
// filesystems such as proc and sysfs.
func (c *Filesystem) Collect(ctx context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameFilesystem) {
		return empty(), nil
	}

	mounts, err := c.src.Mounts(ctx)
	if err != nil {
		queryFailed(c.logger, NameFilesystem, err)
		return nil, nil
	}

	docs := make([]filesystemDoc, 0, len(mounts))
	for _, m := range mounts {
		if m.Total == 0 {
			continue
		}
		docs = append(docs, filesystemDoc{
			Name:  m.From,
			Type:  m.Type,
			Free:  cfg.Size(m.Free),
			Avail: cfg.Size(m.Avail),
			Total: cfg.Size(m.Total),
		})
	}
	return docs, nil
}
