package hydrate

import (
	"fmt"
	"strings"

	"github.com/robworks/fencer/internal/types"
)

// Builder drives a command-builder widget. It keeps a selection per
// option and recomputes the displayed command from the base plus every
// active selection in group-declaration order, so the command never
// depends on the order the user clicked things.
type Builder struct {
	id      types.WidgetID
	spec    types.CommandBuilderSpec
	tracker Tracker

	flags   map[[2]int]bool
	choices map[[2]int]string
	values  map[[2]int]string
}

func newBuilder(id types.WidgetID, spec types.CommandBuilderSpec, tracker Tracker) *Builder {
	return &Builder{
		id:      id,
		spec:    spec,
		tracker: tracker,
		flags:   make(map[[2]int]bool),
		choices: make(map[[2]int]string),
		values:  make(map[[2]int]string),
	}
}

func (b *Builder) ID() types.WidgetID   { return b.id }
func (b *Builder) Tag() types.WidgetTag { return types.TagCommandBuilder }

// Groups returns the option groups in authored order.
func (b *Builder) Groups() []types.BuilderGroup { return b.spec.Groups }

// Toggle flips a flag option on or off and returns its new state.
func (b *Builder) Toggle(group, option int) (bool, error) {
	if _, err := b.option(group, option, types.OptionFlag); err != nil {
		return false, err
	}

	key := [2]int{group, option}
	b.flags[key] = !b.flags[key]
	b.changed()
	return b.flags[key], nil
}

// Choose selects one of a choice option's values. An empty value
// clears the selection.
func (b *Builder) Choose(group, option int, value string) error {
	opt, err := b.option(group, option, types.OptionChoice)
	if err != nil {
		return err
	}

	key := [2]int{group, option}
	if value == "" {
		delete(b.choices, key)
		b.changed()
		return nil
	}
	for _, choice := range opt.Choices {
		if choice.Value == value {
			b.choices[key] = value
			b.changed()
			return nil
		}
	}
	return fmt.Errorf("%q is not a choice for %s", value, opt.Flag)
}

// SetValue sets the free-text argument of a value option. Empty text
// clears it.
func (b *Builder) SetValue(group, option int, text string) error {
	if _, err := b.option(group, option, types.OptionValue); err != nil {
		return err
	}

	key := [2]int{group, option}
	if text == "" {
		delete(b.values, key)
	} else {
		b.values[key] = text
	}
	b.changed()
	return nil
}

// Command returns the assembled command line: the base followed by the
// active selections of each group, in declaration order.
func (b *Builder) Command() string {
	parts := []string{b.spec.Base}
	for gi, group := range b.spec.Groups {
		for oi, opt := range group.Options {
			key := [2]int{gi, oi}
			switch effectiveType(opt) {
			case types.OptionFlag:
				if b.flags[key] {
					parts = append(parts, opt.Flag)
				}
			case types.OptionChoice:
				if v, ok := b.choices[key]; ok {
					parts = append(parts, v)
				}
			case types.OptionValue:
				if v, ok := b.values[key]; ok {
					parts = append(parts, opt.Flag, v)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

func (b *Builder) changed() {
	track(b.tracker, EventBuilderChange, map[string]any{
		"widget":  string(b.id),
		"command": b.Command(),
	})
}

// option validates indices and that the option at them has the
// expected interaction type.
func (b *Builder) option(group, option int, want types.OptionType) (types.BuilderOption, error) {
	if group < 0 || group >= len(b.spec.Groups) {
		return types.BuilderOption{}, fmt.Errorf("group %d out of range", group)
	}
	options := b.spec.Groups[group].Options
	if option < 0 || option >= len(options) {
		return types.BuilderOption{}, fmt.Errorf("option %d out of range in group %d", option, group)
	}
	opt := options[option]
	if got := effectiveType(opt); got != want {
		return types.BuilderOption{}, fmt.Errorf("option %s is %s-typed, not %s", opt.Flag, got, want)
	}
	return opt, nil
}

// effectiveType normalizes an option's type the same way validation
// does, so hand-built payloads behave like validated ones.
func effectiveType(opt types.BuilderOption) types.OptionType {
	if opt.Type != "" {
		return opt.Type
	}
	if len(opt.Choices) > 0 {
		return types.OptionChoice
	}
	return types.OptionFlag
}
