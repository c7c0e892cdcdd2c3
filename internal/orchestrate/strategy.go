package orchestrate

import (
	"encoding/json"
	"fmt"

	"verihammer/internal/worldmap"
)

// strategyFile is the on-disk shape of strategy.json: one entry per
// Conversion, each a chain of translator policies in application order.
// The original serializes either a bare Conversion or a tuple of them
// via jsonpickle depending on call site; encoding/json has no union
// type, so we always persist a list — a single-conversion strategy is
// just a one-element list, which replay handles the same way either
// way.
type strategyFile [][]worldmap.Policy

// marshalStrategy renders convs as strategy.json content.
func marshalStrategy(convs []*worldmap.Conversion) ([]byte, error) {
	sf := make(strategyFile, len(convs))
	for i, c := range convs {
		sf[i] = c.StrategyJSON()
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("orchestrate: marshaling strategy: %w", err)
	}
	return data, nil
}

// unmarshalStrategy reconstructs the Conversion chains persisted by
// marshalStrategy, looking up each step's translator by name in the
// currently registered world-map factories (populated by
// translators.Register).
func unmarshalStrategy(data []byte) ([]*worldmap.Conversion, error) {
	var sf strategyFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("orchestrate: decoding strategy: %w", err)
	}
	factories := make(map[string]worldmap.TranslatorFactory)
	for _, f := range worldmap.Factories() {
		factories[f.Name()] = f
	}

	convs := make([]*worldmap.Conversion, len(sf))
	for i, policies := range sf {
		steps := make([]worldmap.Translator, len(policies))
		for j, p := range policies {
			factory, ok := factories[p.TranslatorName]
			if !ok {
				return nil, fmt.Errorf("orchestrate: unknown translator %q in strategy", p.TranslatorName)
			}
			chosen := make([]worldmap.CmdlineOption, len(p.ExtraArgs))
			for k, arg := range p.ExtraArgs {
				chosen[k] = worldmap.CmdlineOption{Template: arg}
			}
			steps[j] = factory.New(chosen)
		}
		convs[i] = &worldmap.Conversion{Steps: steps}
	}
	return convs, nil
}
