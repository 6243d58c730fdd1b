package discord

import "strconv"

func (p *Platform) ShardID() int { return p.shardID }

func (p *Platform) ShardCount() int { return p.shardCount }

func (p *Platform) ShardForGuild(guildID string) int {
	return ShardFor(guildID, p.shardCount)
}

// ShardFor: regla de Discord, (guild_id >> 22) % shard_count.
// Un id inválido cae en el shard 0.
func ShardFor(guildID string, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	id, err := strconv.ParseUint(guildID, 10, 64)
	if err != nil {
		return 0
	}
	return int((id >> 22) % uint64(shardCount))
}
