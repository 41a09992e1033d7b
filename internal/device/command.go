package device

// Command is the coarse speed setting understood by the fan controller.
type Command string

const (
	CommandOff    Command = "OFF"
	CommandLow    Command = "LOW"
	CommandMedium Command = "MEDIUM"
	CommandHigh   Command = "HIGH"
)

// CommandFor collapses a panel speed level onto a device command.
// 0 (and anything below) is OFF; 1-2 LOW; 3-4 MEDIUM; 5 and above HIGH.
func CommandFor(level int) Command {
	switch {
	case level <= 0:
		return CommandOff
	case level <= 2:
		return CommandLow
	case level <= 4:
		return CommandMedium
	default:
		return CommandHigh
	}
}

// LevelCommand pairs a panel level with the command it sends.
type LevelCommand struct {
	Level   int     `json:"level"`
	Command Command `json:"command"`
}

// Table lists the command for every level from 0 to 5.
func Table() []LevelCommand {
	table := make([]LevelCommand, 0, 6)
	for level := 0; level <= 5; level++ {
		table = append(table, LevelCommand{Level: level, Command: CommandFor(level)})
	}
	return table
}
