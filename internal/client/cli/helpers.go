package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"
)

// parseID разбирает id контакта из первого аргумента
func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing contact ID. Usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contact ID: %s", args[0])
	}
	return id, nil
}

// newFlagSet создает FlagSet команды, ошибки разбора возвращаются вызывающему
func newFlagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	return flags
}

// firstArg возвращает первый аргумент или запрашивает его
func (c *Cli) firstArg(args []string, prompt string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	return c.io.ReadInput(prompt)
}
