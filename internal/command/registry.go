package command

var registry = map[string]Command{}

// Register registers a command and its aliases.
func Register(cmd Command) {
	registry[cmd.Name()] = cmd
	for _, a := range cmd.Aliases() {
		registry[a] = cmd
	}
}

// Get returns the command with the given name.
func Get(name string) (Command, bool) {
	cmd, ok := registry[name]
	return cmd, ok
}

// All returns all registered commands, deduplicated by name.
func All() []Command {
	seen := map[string]bool{}
	list := make([]Command, 0)
	for _, cmd := range registry {
		if seen[cmd.Name()] {
			continue
		}
		list = append(list, cmd)
		seen[cmd.Name()] = true
	}
	return list
}
