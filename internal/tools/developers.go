package tools

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"devscout/internal/data/embedded"
	"devscout/pkg/chattypes"
)

var (
	developerOnce sync.Once
	developerData []chattypes.Developer
	developerErr  error
)

// developerDataset returns the embedded demonstration dataset, parsed once.
// There is no live data source; the tool always slices this fixed list.
func developerDataset() ([]chattypes.Developer, error) {
	developerOnce.Do(func() {
		var parsed []chattypes.Developer
		if err := yaml.Unmarshal(embedded.DeveloperData, &parsed); err != nil {
			developerErr = fmt.Errorf("parse embedded developer dataset: %w", err)
			return
		}
		developerData = parsed
	})
	return developerData, developerErr
}
