package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	copyFlagTypeName            = "copy"
	invalidCopyFlagValueMessage = "invalid copy flag value '%s'"
)

var (
	// copyFlagLiterals maps accepted spellings to their boolean value. The empty
	// spelling stands for a bare --copy.
	copyFlagLiterals = map[string]bool{
		"":      true,
		"true":  true,
		"t":     true,
		"1":     true,
		"yes":   true,
		"y":     true,
		"false": false,
		"f":     false,
		"0":     false,
		"no":    false,
		"n":     false,
	}
	copyFlagCommandNames = map[string]struct{}{
		reportCommandName: {},
		reportAlias:       {},
		treeCommandName:   {},
		treeAlias:         {},
		initCommandName:   {},
	}
)

func isCopyFlagCommand(argument string) bool {
	_, known := copyFlagCommandNames[strings.ToLower(strings.TrimSpace(argument))]
	return known
}

func interpretCopyFlagLiteral(input string) (bool, bool) {
	value, known := copyFlagLiterals[strings.ToLower(strings.TrimSpace(input))]
	return value, known
}

// copyFlagValue is a boolean flag that also accepts a separate yes/no argument,
// so "--copy no" works the same as "--copy=no".
type copyFlagValue struct {
	target *bool
}

func (value *copyFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	booleanValue, ok := interpretCopyFlagLiteral(input)
	if !ok {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	*value.target = booleanValue
	return nil
}

func (value *copyFlagValue) String() string {
	if value == nil || value.target == nil || !*value.target {
		return "false"
	}
	return "true"
}

func (value *copyFlagValue) Type() string {
	return copyFlagTypeName
}

func registerCopyFlag(flagSet *pflag.FlagSet, target *bool) {
	if flagSet == nil || target == nil {
		return
	}
	*target = false
	flagSet.Var(&copyFlagValue{target: target}, copyFlagName, copyFlagDescription)
	if lookup := flagSet.Lookup(copyFlagName); lookup != nil {
		lookup.NoOptDefVal = "true"
	}
}

// normalizeCopyFlagArguments rewrites "--copy <value>" into "--copy=<value>" when the
// following argument is a boolean literal or an unknown word, and leaves it alone when
// the following argument is a subcommand, another flag, or sits after "--".
func normalizeCopyFlagArguments(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	commandSeen := false
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if current != "--"+copyFlagName {
			normalized = append(normalized, current)
			if !commandSeen && !strings.HasPrefix(current, "-") && isCopyFlagCommand(current) {
				commandSeen = true
			}
			continue
		}

		nextIndex := index + 1
		if nextIndex >= len(arguments) || strings.HasPrefix(arguments[nextIndex], "-") {
			normalized = append(normalized, fmt.Sprintf("--%s=true", copyFlagName))
			continue
		}
		nextValue := arguments[nextIndex]
		if booleanValue, ok := interpretCopyFlagLiteral(nextValue); ok {
			normalized = append(normalized, fmt.Sprintf("--%s=%t", copyFlagName, booleanValue))
			index++
			continue
		}
		if commandSeen || isCopyFlagCommand(nextValue) {
			// The next word is a transcript path or the subcommand itself.
			normalized = append(normalized, fmt.Sprintf("--%s=true", copyFlagName))
			continue
		}
		normalized = append(normalized, fmt.Sprintf("--%s=%s", copyFlagName, nextValue))
		index++
	}
	return normalized
}
