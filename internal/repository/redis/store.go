// Package redis stores invite codes in Redis so several processes can share
// one code set.
//
// Layout under the configured prefix:
//
//	<prefix>:codes     hash  code -> "0" unused, "1" used
//	<prefix>:created   hash  code -> unix millis
//	<prefix>:used_on   hash  code -> unix millis
//	<prefix>:order     list  codes in insertion order
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/repository"

	goredis "github.com/redis/go-redis/v9"
)

const insertScript = `
if redis.call("HSETNX", KEYS[1], ARGV[1], "0") == 0 then
  return 0
end
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
redis.call("RPUSH", KEYS[3], ARGV[1])
return 1
`

// claimScript returns 0 for an unknown code, 1 for a used one and 2 after
// flipping an unused code.
const claimScript = `
local state = redis.call("HGET", KEYS[1], ARGV[1])
if not state then
  return 0
end
if state == "1" then
  return 1
end
redis.call("HSET", KEYS[1], ARGV[1], "1")
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
return 2
`

const wipeScript = `
local n = redis.call("HLEN", KEYS[1])
redis.call("DEL", KEYS[1], KEYS[2], KEYS[3], KEYS[4])
return n
`

type Store struct {
	client *goredis.Client
	keys   keySet
	insert *goredis.Script
	claim  *goredis.Script
	wipe   *goredis.Script
}

var _ repository.InviteCodeRepository = (*Store)(nil)

type keySet struct {
	codes   string
	created string
	usedOn  string
	order   string
}

func newKeySet(prefix string) keySet {
	if prefix == "" {
		prefix = "groupkeeper"
	}
	return keySet{
		codes:   prefix + ":codes",
		created: prefix + ":created",
		usedOn:  prefix + ":used_on",
		order:   prefix + ":order",
	}
}

// NewStore wraps a connected client. The store takes ownership of the client
// and closes it on Close.
func NewStore(client *goredis.Client, prefix string) *Store {
	return &Store{
		client: client,
		keys:   newKeySet(prefix),
		insert: goredis.NewScript(insertScript),
		claim:  goredis.NewScript(claimScript),
		wipe:   goredis.NewScript(wipeScript),
	}
}

func (s *Store) Insert(ctx context.Context, code string) (bool, error) {
	logger.EnterMethod("redis.Insert")

	n, err := s.insert.Run(ctx, s.client,
		[]string{s.keys.codes, s.keys.created, s.keys.order},
		code, nowMillis()).Int()
	if err != nil {
		logger.ExitMethodWithError("redis.Insert", err)
		return false, fmt.Errorf("insert invite code: %w", err)
	}

	logger.ExitMethod("redis.Insert", "inserted", n == 1)
	return n == 1, nil
}

func (s *Store) Get(ctx context.Context, code string) (*domain.InviteCode, error) {
	pipe := s.client.Pipeline()
	stateCmd := pipe.HGet(ctx, s.keys.codes, code)
	createdCmd := pipe.HGet(ctx, s.keys.created, code)
	usedOnCmd := pipe.HGet(ctx, s.keys.usedOn, code)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("get invite code: %w", err)
	}

	state, err := stateCmd.Result()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrUnknownCode
	}
	if err != nil {
		return nil, fmt.Errorf("get invite code: %w", err)
	}

	inv := &domain.InviteCode{Code: code, Used: state == "1"}
	if created, err := createdCmd.Int64(); err == nil {
		inv.CreatedOn = time.UnixMilli(created).UTC()
	}
	if usedOn, err := usedOnCmd.Int64(); err == nil {
		t := time.UnixMilli(usedOn).UTC()
		inv.UsedOn = &t
	}
	return inv, nil
}

func (s *Store) Claim(ctx context.Context, code string) (domain.ClaimResult, error) {
	logger.EnterMethod("redis.Claim")

	n, err := s.claim.Run(ctx, s.client,
		[]string{s.keys.codes, s.keys.usedOn},
		code, nowMillis()).Int()
	if err != nil {
		logger.ExitMethodWithError("redis.Claim", err)
		return domain.ClaimUnknown, fmt.Errorf("claim invite code: %w", err)
	}

	result := domain.ClaimUnknown
	switch n {
	case 1:
		result = domain.ClaimAlreadyUsed
	case 2:
		result = domain.ClaimClaimed
	}
	logger.ExitMethod("redis.Claim", "result", result)
	return result, nil
}

func (s *Store) ListActive(ctx context.Context) ([]domain.InviteCode, error) {
	order, err := s.client.LRange(ctx, s.keys.order, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	codes := []domain.InviteCode{}
	if len(order) == 0 {
		return codes, nil
	}

	pipe := s.client.Pipeline()
	statesCmd := pipe.HMGet(ctx, s.keys.codes, order...)
	createdCmd := pipe.HMGet(ctx, s.keys.created, order...)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}

	states := statesCmd.Val()
	created := createdCmd.Val()
	for i, code := range order {
		if state, _ := states[i].(string); state != "0" {
			continue
		}
		inv := domain.InviteCode{Code: code}
		if raw, ok := created[i].(string); ok {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
				inv.CreatedOn = time.UnixMilli(ms).UTC()
			}
		}
		codes = append(codes, inv)
	}
	return codes, nil
}

func (s *Store) WipeAll(ctx context.Context) (int64, error) {
	logger.EnterMethod("redis.WipeAll")

	n, err := s.wipe.Run(ctx, s.client,
		[]string{s.keys.codes, s.keys.created, s.keys.usedOn, s.keys.order}).Int64()
	if err != nil {
		logger.ExitMethodWithError("redis.WipeAll", err)
		return 0, fmt.Errorf("wipe invite codes: %w", err)
	}

	logger.ExitMethod("redis.WipeAll", "removed", n)
	return n, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}
