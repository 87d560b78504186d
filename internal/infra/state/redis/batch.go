package redisstate

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// writeBatch 将一次写操作涉及的文档与索引命令放进同一个 pipeline 发送。
//
// pipeline 只保证一次往返，不是 MULTI/EXEC 事务: 某条命令失败时，
// 其余命令照常执行且不会回滚，文档和索引可能因此不一致。
// 返回值是第一条失败命令的错误。
func writeBatch(ctx context.Context, client *redis.Client, fn func(pipe redis.Pipeliner) error) error {
	_, err := client.Pipelined(ctx, fn)
	return err
}
