package schema

import (
	"fmt"
	"strings"

	"github.com/robworks/fencer/internal/decoder"
	"github.com/robworks/fencer/internal/types"
)

// commandBuilder validates a command-builder block. Base is stored
// trimmed so the recomputed command never carries stray whitespace.
// Each option declares its behavior through the type field: flag for
// an independent toggle, choice for a radio-like selection over its
// choices list, value for a free text slot. An omitted type is
// inferred: choice when a choices list is present, flag otherwise.
func (c *checker) commandBuilder(m *decoder.Mapping) types.WidgetSpec {
	root := c.root(m)

	spec := types.CommandBuilderSpec{}
	if base, ok := root.requireString("base"); ok {
		trimmed := strings.TrimSpace(base)
		if trimmed == "" {
			c.schemaErrorf(root.m.Line("base"), "field base is required and must be non-empty")
		}
		spec.Base = trimmed
	}
	spec.Description = root.optionalString("description", "")
	spec.Groups = c.builderGroups(root)
	root.unknownKeys("base", "description", "groups")

	return spec
}

func (c *checker) builderGroups(root scope) []types.BuilderGroup {
	seq, ok := root.requireSequence("groups")
	if !ok {
		return []types.BuilderGroup{}
	}

	groups := make([]types.BuilderGroup, 0, len(seq))
	for i, item := range seq {
		s, ok := root.item(item, fmt.Sprintf("groups[%d]", i))
		if !ok {
			continue
		}
		group := types.BuilderGroup{}
		group.Name, _ = s.requireString("name")
		group.Options = c.builderOptions(s)
		s.unknownKeys("name", "options")

		groups = append(groups, group)
	}
	return groups
}

func (c *checker) builderOptions(group scope) []types.BuilderOption {
	seq, ok := group.requireSequence("options")
	if !ok {
		return []types.BuilderOption{}
	}

	options := make([]types.BuilderOption, 0, len(seq))
	for i, item := range seq {
		s, ok := group.item(item, fmt.Sprintf("options[%d]", i))
		if !ok {
			continue
		}
		option := types.BuilderOption{}
		option.Flag, _ = s.requireString("flag")
		option.Label = s.optionalString("label", "")
		option.Description = s.optionalString("description", "")
		option.Choices = c.builderChoices(s)
		option.Type = c.builderOptionType(s, len(option.Choices) > 0)
		s.unknownKeys("flag", "type", "label", "description", "choices")

		options = append(options, option)
	}
	return options
}

func (c *checker) builderChoices(option scope) []types.BuilderChoice {
	seq := option.optionalSequence("choices")
	if seq == nil {
		return nil
	}

	choices := make([]types.BuilderChoice, 0, len(seq))
	for i, item := range seq {
		s, ok := option.item(item, fmt.Sprintf("choices[%d]", i))
		if !ok {
			continue
		}
		choice := types.BuilderChoice{}
		choice.Value, _ = s.requireString("value")
		choice.Label = s.optionalString("label", choice.Value)
		s.unknownKeys("value", "label")

		choices = append(choices, choice)
	}
	return choices
}

func (c *checker) builderOptionType(option scope, hasChoices bool) types.OptionType {
	fallback := types.OptionFlag
	if hasChoices {
		fallback = types.OptionChoice
	}
	raw := option.optionalString("type", string(fallback))

	t := types.OptionType(raw)
	switch t {
	case types.OptionFlag, types.OptionChoice, types.OptionValue:
	default:
		c.schemaErrorf(option.m.Line("type"),
			"field %s must be one of flag, choice, value, got %q", option.qualified("type"), raw)
		return fallback
	}

	if t == types.OptionChoice && !hasChoices {
		c.schemaErrorf(option.missingLine("choices"),
			"field %s requires a non-empty choices list", option.qualified("type"))
	}
	if t != types.OptionChoice && hasChoices {
		c.warnf(option.m.Line("choices"),
			"field %s ignored for %s-typed options", option.qualified("choices"), t)
	}
	return t
}
