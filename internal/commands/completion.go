// Where: internal/commands/completion.go
// What: Shell completion command implementation.
// Why: Provide basic subcommand completion for bash, zsh, and fish.
package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/photo-album/eda-app/internal/meta"
)

// CompletionCmd defines the structure for the completion command.
type CompletionCmd struct {
	Bash CompletionBashCmd `cmd:"" help:"Generate bash completion script"`
	Zsh  CompletionZshCmd  `cmd:"" help:"Generate zsh completion script"`
	Fish CompletionFishCmd `cmd:"" help:"Generate fish completion script"`
}

type (
	CompletionBashCmd struct{}
	CompletionZshCmd  struct{}
	CompletionFishCmd struct{}
)

func runCompletionBash(cli CLI, out io.Writer) int {
	commands, subcommands := collectCompletionCommands(cli)

	var caseParts []string
	for _, cmd := range sortedKeys(subcommands) {
		part := fmt.Sprintf(`        %s)
            COMPREPLY=( $(compgen -W "%s" -- "${cur}") )
            return 0
            ;;`, cmd, strings.Join(subcommands[cmd], " "))
		caseParts = append(caseParts, part)
	}

	script := `_%[1]s_completion() {
    local cur cmd
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    cmd="${COMP_WORDS[1]}"

    case "${cmd}" in
%[2]s
    esac

    if [[ ${COMP_CWORD} -le 1 ]]; then
        COMPREPLY=( $(compgen -W "%[3]s" -- "${cur}") )
        return 0
    fi
}
complete -F _%[1]s_completion %[1]s
`
	writeString(out, fmt.Sprintf(script, meta.AppName, strings.Join(caseParts, "\n"), strings.Join(commands, " ")))
	return 0
}

func runCompletionZsh(cli CLI, out io.Writer) int {
	commands, subcommands := collectCompletionCommands(cli)

	script := `#compdef %[1]s
_%[1]s_completion() {
  local -a commands
  commands=(%[2]s)
  local cmd="${words[2]}"

  if [[ $CURRENT -eq 2 ]]; then
    _values 'commands' ${commands[@]}
    return
  fi

%[3]s
}
_%[1]s_completion "$@"
`

	var subBlocks strings.Builder
	for _, cmd := range sortedKeys(subcommands) {
		subBlocks.WriteString(fmt.Sprintf(`  if [[ "${cmd}" == "%s" && $CURRENT -eq 3 ]]; then
    _values '%s' %s
    return
  fi
`, cmd, cmd, strings.Join(subcommands[cmd], " ")))
	}

	writeString(out, fmt.Sprintf(script, meta.AppName, strings.Join(commands, " "), subBlocks.String()))
	return 0
}

func runCompletionFish(cli CLI, out io.Writer) int {
	commands, subcommands := collectCompletionCommands(cli)
	writeLine(out, fmt.Sprintf("complete -c %s -f -a \"%s\"", meta.AppName, strings.Join(commands, " ")))
	for _, cmd := range sortedKeys(subcommands) {
		writeLine(out, fmt.Sprintf("complete -c %s -f -n \"__fish_seen_subcommand_from %s\" -a \"%s\"",
			meta.AppName, cmd, strings.Join(subcommands[cmd], " ")))
	}
	return 0
}

func collectCompletionCommands(cli CLI) ([]string, map[string][]string) {
	parser, err := kong.New(&cli)
	if err != nil {
		return nil, nil
	}

	var commands []string
	subcommands := make(map[string][]string)

	for _, node := range parser.Model.Children {
		if node.Hidden || strings.HasPrefix(node.Name, "__") {
			continue
		}
		commands = append(commands, node.Name)
		var subs []string
		for _, sub := range node.Children {
			if sub.Hidden || strings.HasPrefix(sub.Name, "__") || sub.Type != kong.CommandNode {
				continue
			}
			subs = append(subs, sub.Name)
		}
		if len(subs) > 0 {
			subcommands[node.Name] = subs
		}
	}

	return commands, subcommands
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
