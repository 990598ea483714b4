package ports

import "github.com/devbush/call2insights/internal/domain"

// Exporter serializes the merged result table to a downloadable artifact.
type Exporter interface {
	Write(path string, table *domain.ExportTable) error
}
