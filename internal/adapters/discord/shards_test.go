package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardFor(t *testing.T) {
	// 41771983423143937 >> 22 = 9959216934
	const guild = "41771983423143937"
	assert.Equal(t, 0, ShardFor(guild, 1))
	assert.Equal(t, 0, ShardFor(guild, 2))
	assert.Equal(t, 0, ShardFor(guild, 3))
	assert.Equal(t, 4, ShardFor(guild, 5))
	assert.Equal(t, 2, ShardFor(guild, 7))

	assert.Equal(t, 0, ShardFor("not-a-snowflake", 4))
	assert.Equal(t, 0, ShardFor("", 4))
	assert.Equal(t, 0, ShardFor(guild, 0))
}

func TestPlatformShardInfo(t *testing.T) {
	p := &Platform{shardID: 1, shardCount: 5}
	assert.Equal(t, 1, p.ShardID())
	assert.Equal(t, 4, p.ShardForGuild("41771983423143937"))
}
