package localization

import (
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/usecase"
)

// StaticCatalog is a map-backed resource lookup. Unknown keys resolve to the
// key itself so missing resources never hide a message entirely.
type StaticCatalog struct {
	resources map[string]string
}

// NewStaticCatalog constructs the catalog with the built-in resources.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{
		resources: map[string]string{
			usecase.KeyPermissionAlreadyGranted: "permission already granted to role",
		},
	}
}

// Get returns the display string for the key.
func (c *StaticCatalog) Get(key string) string {
	if value, ok := c.resources[key]; ok {
		return value
	}
	return key
}

var _ port.Localizer = (*StaticCatalog)(nil)
