package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandFor(t *testing.T) {
	expected := map[int]Command{
		0: CommandOff,
		1: CommandLow,
		2: CommandLow,
		3: CommandMedium,
		4: CommandMedium,
		5: CommandHigh,
	}
	for level, cmd := range expected {
		assert.Equal(t, cmd, CommandFor(level), "level %d", level)
	}
}

func TestTable(t *testing.T) {
	table := Table()
	assert.Len(t, table, 6)
	assert.Equal(t, LevelCommand{Level: 0, Command: CommandOff}, table[0])
	assert.Equal(t, LevelCommand{Level: 5, Command: CommandHigh}, table[5])
}

