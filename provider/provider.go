// Package provider implements input providers that load one platform's
// declarations into a cir.Module, and the grouping step that lines up the
// same declaration across platforms.
package provider

import (
	"context"

	"github.com/broady/commonizer/cir"
)

// Platform describes one compilation target.
type Platform struct {
	// Name identifies the platform in reports (e.g., "linux_amd64").
	Name string

	// GOOS and GOARCH select the files go/packages loads. Empty values
	// inherit the host's.
	GOOS   string
	GOARCH string

	// Tags are extra build tags.
	Tags []string

	// Manifest is the path of the platform's YAML manifest, used by
	// ManifestProvider.
	Manifest string
}

// Provider loads the declarations of one platform.
type Provider interface {
	Load(ctx context.Context, platform Platform) (*cir.Module, error)
}

// LoadAll loads every platform with p, in order.
func LoadAll(ctx context.Context, p Provider, platforms []Platform) ([]*cir.Module, error) {
	modules := make([]*cir.Module, 0, len(platforms))
	for _, platform := range platforms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := p.Load(ctx, platform)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}
