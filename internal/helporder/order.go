package helporder

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const (
	// PriorityAnnotationKey names the cobra annotation holding a command's help priority.
	PriorityAnnotationKey = "help_priority"
	// DefaultPriority applies to commands without a recorded priority.
	DefaultPriority = 1

	orderedCommandsTemplateFunctionNameConstant = "orderedCommands"
)

const orderedUsageTemplateConstant = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range orderedCommands .}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range orderedCommands .}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

// Group attaches subcommands to a parent together with their help priorities.
type Group struct {
	parent *cobra.Command
}

// NewGroup wraps parent so that subcommands can be added with a priority.
func NewGroup(parent *cobra.Command) *Group {
	return &Group{parent: parent}
}

// AddCommand records the priority on command and attaches it to the group's parent.
func (group *Group) AddCommand(command *cobra.Command, priority int) {
	if group == nil || group.parent == nil || command == nil {
		return
	}
	SetPriority(command, priority)
	group.parent.AddCommand(command)
}

// SetPriority stores the help priority on command.
func SetPriority(command *cobra.Command, priority int) {
	if command == nil {
		return
	}
	if command.Annotations == nil {
		command.Annotations = map[string]string{}
	}
	command.Annotations[PriorityAnnotationKey] = strconv.Itoa(priority)
}

// Priority reports the help priority stored on command, falling back to DefaultPriority.
func Priority(command *cobra.Command) int {
	if command == nil || command.Annotations == nil {
		return DefaultPriority
	}
	rawPriority, priorityExists := command.Annotations[PriorityAnnotationKey]
	if !priorityExists {
		return DefaultPriority
	}
	priority, parseError := strconv.Atoi(strings.TrimSpace(rawPriority))
	if parseError != nil {
		return DefaultPriority
	}
	return priority
}

// OrderedCommands returns the subcommands of command sorted by priority, then by name.
func OrderedCommands(command *cobra.Command) []*cobra.Command {
	if command == nil {
		return nil
	}
	subcommands := append([]*cobra.Command{}, command.Commands()...)
	sort.SliceStable(subcommands, func(leftIndex int, rightIndex int) bool {
		leftPriority := Priority(subcommands[leftIndex])
		rightPriority := Priority(subcommands[rightIndex])
		if leftPriority != rightPriority {
			return leftPriority < rightPriority
		}
		return subcommands[leftIndex].Name() < subcommands[rightIndex].Name()
	})
	return subcommands
}

// Install configures root and its descendants to list subcommands in priority order.
func Install(root *cobra.Command) {
	if root == nil {
		return
	}
	cobra.AddTemplateFunc(orderedCommandsTemplateFunctionNameConstant, OrderedCommands)
	root.SetUsageTemplate(orderedUsageTemplateConstant)
}
