package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/klingonswap/bridge/internal/chainmodel"
)

// LoadAssetFile reads and parses a configs/assets.yaml-shaped file and
// registers every entry into chainmodel's asset registry.
func LoadAssetFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading asset file %s: %w", path, err)
	}

	var file AssetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("config: parsing asset file %s: %w", path, err)
	}

	for _, a := range file.Assets {
		if !chainmodel.IsSupported(a.Chain) {
			return fmt.Errorf("config: asset %s references unknown chain %s", a.Symbol, a.Chain)
		}

		min, err := chainmodel.ParseAmount(a.MinAmountAtomic)
		if err != nil {
			return fmt.Errorf("config: asset %s has invalid min_amount_atomic %q: %w", a.Symbol, a.MinAmountAtomic, err)
		}

		chainmodel.RegisterAsset(&chainmodel.AssetDescriptor{
			Key:          chainmodel.NewAssetKey(a.Chain, a.Symbol),
			Symbol:       a.Symbol,
			Decimals:     a.Decimals,
			CMCId:        a.CMCID,
			TokenAddress: a.TokenAddress,
			MinAmount:    min,
		})
	}

	return nil
}
