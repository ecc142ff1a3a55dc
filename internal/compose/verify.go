package compose

import (
	"context"
	"fmt"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
)

// Verify runs rendered compose output back through the compose-go loader
// with schema validation on. Interpolation is skipped because the ${VAR}
// references resolve against the generated .env at deploy time, not here.
func Verify(ctx context.Context, data []byte) error {
	details := types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{Filename: "docker-compose.yml", Content: data},
		},
	}

	_, err := loader.LoadWithContext(ctx, details, func(options *loader.Options) {
		options.SetProjectName(ProjectName, true)
		options.SkipInterpolation = true
		options.SkipValidation = false
		options.SkipConsistencyCheck = true
	})
	if err != nil {
		return fmt.Errorf("generated compose file failed validation: %w", err)
	}
	return nil
}
