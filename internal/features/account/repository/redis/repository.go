package redis

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/account/repository"
	redisplatform "quad-backend/internal/platform/redis"
)

const (
	maxTxRetries  = 10
	scanBatchSize = 100
)

// Hash fields of an account record.
const (
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldPhoneNumber  = "phone_number"
	fieldBio          = "bio"
	fieldCategory     = "category"
	fieldRegistered   = "registered"
	fieldBalance      = "balance"
	fieldRegisteredAt = "registered_at"
	fieldUpdatedAt    = "updated_at"
)

type accountStore struct {
	client        redis.UniversalClient
	keys          redisplatform.Keyspace
	journalMaxLen int64
}

// NewAccountStore returns a Redis backed AccountStore. Each record is a hash at
// <prefix>:account:<identity>; atomic units use WATCH/MULTI/EXEC.
func NewAccountStore(client redis.UniversalClient, prefix string, journalMaxLen int64) repository.AccountStore {
	return &accountStore{
		client:        client,
		keys:          redisplatform.Keyspace(prefix),
		journalMaxLen: journalMaxLen,
	}
}

func (r *accountStore) accountKey(id models.Identity) string {
	return r.keys.Key("account", id.String())
}

func (r *accountStore) registeredKey() string {
	return r.keys.Key("accounts", "registered")
}

func (r *accountStore) totalKey() string {
	return r.keys.Key("ledger", "total_deposited")
}

func (r *accountStore) journalKey() string {
	return r.keys.Key("ledger", "journal")
}

func (r *accountStore) GetProfile(ctx context.Context, id models.Identity) (*models.Profile, error) {
	fields, err := r.client.HGetAll(ctx, r.accountKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return decodeProfile(id, fields)
}

type redisTx struct {
	store    *accountStore
	rtx      *redis.Tx
	declared map[models.Identity]struct{}
	staged   map[models.Identity]*models.Profile
	order    []models.Identity
	deposit  *big.Int
	entries  []models.Entry
}

func (tx *redisTx) Get(ctx context.Context, id models.Identity) (*models.Profile, error) {
	if _, ok := tx.declared[id]; !ok {
		return nil, repository.ErrUndeclaredKey
	}
	if p, ok := tx.staged[id]; ok {
		return p.Clone(), nil
	}
	fields, err := tx.rtx.HGetAll(ctx, tx.store.accountKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return decodeProfile(id, fields)
}

func (tx *redisTx) Put(p *models.Profile) {
	if _, ok := tx.staged[p.Identity]; !ok {
		tx.order = append(tx.order, p.Identity)
	}
	tx.staged[p.Identity] = p.Clone()
}

func (tx *redisTx) AddDeposited(amount *big.Int) {
	tx.deposit.Add(tx.deposit, amount)
}

func (tx *redisTx) Append(e models.Entry) {
	tx.entries = append(tx.entries, e)
}

func (r *accountStore) Atomic(ctx context.Context, ids []models.Identity, fn func(tx repository.Tx) error) error {
	ids = repository.Dedup(ids)
	watch := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		watch = append(watch, r.accountKey(id))
	}
	watch = append(watch, r.totalKey())

	txf := func(rtx *redis.Tx) error {
		tx := &redisTx{
			store:    r,
			rtx:      rtx,
			declared: make(map[models.Identity]struct{}, len(ids)),
			staged:   make(map[models.Identity]*models.Profile, len(ids)),
			deposit:  new(big.Int),
		}
		for _, id := range ids {
			tx.declared[id] = struct{}{}
		}

		if err := fn(tx); err != nil {
			return err
		}
		for _, id := range tx.order {
			if _, ok := tx.declared[id]; !ok {
				return repository.ErrUndeclaredKey
			}
		}

		var newTotal *big.Int
		if tx.deposit.Sign() != 0 {
			current, err := readBigInt(ctx, rtx, r.totalKey())
			if err != nil {
				return err
			}
			newTotal = current.Add(current, tx.deposit)
		}

		_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range tx.order {
				p := tx.staged[id]
				pipe.HSet(ctx, r.accountKey(id), encodeProfile(p))
				if p.Registered {
					pipe.SAdd(ctx, r.registeredKey(), id.String())
				}
			}
			if newTotal != nil {
				pipe.Set(ctx, r.totalKey(), newTotal.String(), 0)
			}
			for _, e := range tx.entries {
				pipe.XAdd(ctx, &redis.XAddArgs{
					Stream: r.journalKey(),
					MaxLen: r.journalMaxLen,
					Approx: true,
					Values: encodeEntry(e),
				})
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, watch...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return repository.ErrTxConflict
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readBigInt(ctx context.Context, c stringGetter, key string) (*big.Int, error) {
	raw, err := c.Get(ctx, key).Result()
	if err == redis.Nil {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt integer at %s: %q", key, raw)
	}
	return n, nil
}

func (r *accountStore) Stats(ctx context.Context) (*models.Stats, error) {
	total, err := readBigInt(ctx, r.client, r.totalKey())
	if err != nil {
		return nil, err
	}
	count, err := r.client.SCard(ctx, r.registeredKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	return &models.Stats{TotalDeposited: total, RegisteredCount: count}, nil
}

// Journal returns the newest entries first.
func (r *accountStore) Journal(ctx context.Context, limit int64) ([]models.Entry, error) {
	if limit <= 0 {
		limit = r.journalMaxLen
	}
	msgs, err := r.client.XRevRangeN(ctx, r.journalKey(), "+", "-", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	entries := make([]models.Entry, 0, len(msgs))
	for _, msg := range msgs {
		e, err := decodeEntry(msg.Values)
		if err != nil {
			return nil, fmt.Errorf("journal message %s: %w", msg.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ForEachRegistered loads the registered index with SMEMBERS (SSCAN may
// repeat members, which would double count in audits) and fetches records in
// pipelined batches.
func (r *accountStore) ForEachRegistered(ctx context.Context, fn func(p *models.Profile) error) error {
	members, err := r.client.SMembers(ctx, r.registeredKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	sort.Strings(members)

	for start := 0; start < len(members); start += scanBatchSize {
		batch := members[start:min(start+scanBatchSize, len(members))]

		cmds := make([]*redis.MapStringStringCmd, len(batch))
		_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, m := range batch {
				cmds[i] = pipe.HGetAll(ctx, r.accountKey(models.Identity(m)))
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}
		for i, cmd := range cmds {
			p, err := decodeProfile(models.Identity(batch[i]), cmd.Val())
			if err != nil {
				return err
			}
			if err := fn(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *accountStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func encodeProfile(p *models.Profile) map[string]interface{} {
	registered := "0"
	if p.Registered {
		registered = "1"
	}
	values := map[string]interface{}{
		fieldUsername:    p.Username,
		fieldEmail:       p.Email,
		fieldPhoneNumber: p.PhoneNumber,
		fieldBio:         p.Bio,
		fieldCategory:    strconv.Itoa(int(p.Category)),
		fieldRegistered:  registered,
		fieldBalance:     p.BalanceOrZero().String(),
	}
	if p.RegisteredAt != nil {
		values[fieldRegisteredAt] = p.RegisteredAt.UTC().Format(time.RFC3339Nano)
	}
	if p.UpdatedAt != nil {
		values[fieldUpdatedAt] = p.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return values
}

func decodeProfile(id models.Identity, fields map[string]string) (*models.Profile, error) {
	p := models.NewUnregistered(id)
	if len(fields) == 0 {
		return p, nil
	}

	p.Username = fields[fieldUsername]
	p.Email = fields[fieldEmail]
	p.PhoneNumber = fields[fieldPhoneNumber]
	p.Bio = fields[fieldBio]
	p.Registered = fields[fieldRegistered] == "1"

	if v := fields[fieldCategory]; v != "" {
		c, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("account %s: corrupt category %q", id, v)
		}
		p.Category = models.Category(c)
	}
	if v := fields[fieldBalance]; v != "" {
		if _, ok := p.Balance.SetString(v, 10); !ok {
			return nil, fmt.Errorf("account %s: corrupt balance %q", id, v)
		}
	}
	if t, ok := parseTime(fields[fieldRegisteredAt]); ok {
		p.RegisteredAt = &t
	}
	if t, ok := parseTime(fields[fieldUpdatedAt]); ok {
		p.UpdatedAt = &t
	}
	return p, nil
}

func parseTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func encodeEntry(e models.Entry) map[string]interface{} {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	values := map[string]interface{}{
		"id":   id,
		"kind": string(e.Kind),
		"from": e.From.String(),
		"to":   e.To.String(),
		"at":   e.At.UTC().Format(time.RFC3339Nano),
	}
	if e.Amount != nil {
		values["amount"] = e.Amount.String()
	}
	return values
}

func decodeEntry(values map[string]interface{}) (models.Entry, error) {
	str := func(k string) string {
		s, _ := values[k].(string)
		return s
	}
	e := models.Entry{
		ID:   str("id"),
		Kind: models.EntryKind(str("kind")),
		From: models.Identity(str("from")),
		To:   models.Identity(str("to")),
	}
	if v := str("amount"); v != "" {
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return e, fmt.Errorf("corrupt amount %q", v)
		}
		e.Amount = n
	}
	if t, ok := parseTime(str("at")); ok {
		e.At = t
	}
	return e, nil
}
