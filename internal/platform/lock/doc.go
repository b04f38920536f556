// Package lock serialises work on a key. KeyedMutex covers a single process;
// RedisLocker extends the guarantee across instances sharing a Redis server.
package lock
