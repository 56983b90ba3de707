package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/microblog/config"
	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// pct 取第 p 分位
func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	if !cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			panic(err)
		}
	}

	N := envInt("N", 1000)
	FOLLOWS := envInt("FOLLOWS", 50)
	POSTS := envInt("POSTS", 20)
	REPEAT := envInt("REPEAT", 200)
	PAGE := envInt("PAGE", cfg.Feed.DefaultPageSize)
	CONC := envInt("CONC", 4)
	if FOLLOWS >= N {
		FOLLOWS = N - 1
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	pager := service.Pager{DefaultSize: cfg.Feed.DefaultPageSize, MaxSize: cfg.Feed.MaxPageSize}
	relSvc := service.NewRelationshipService(followRepo, userRepo, nil, pager)
	feedSvc := service.NewFeedService(repository.NewFeedRepository(db), pager)

	// seed users（密码哈希固定，跳过 bcrypt）
	users := make([]model.User, N)
	now := time.Now().UTC()
	for i := 0; i < N; i++ {
		id := uuid.NewString()[:12]
		users[i] = model.User{Username: "u" + id, Email: id + "@example.com", PasswordHash: "x", LastSeen: now}
	}
	seedStart := time.Now()
	must(0, db.CreateInBatches(&users, 500).Error)

	rng := rand.New(rand.NewSource(42))
	followStart := time.Now()
	followRecs := make([]time.Duration, 0, N*FOLLOWS)
	for i := range users {
		for _, j := range rng.Perm(N)[:FOLLOWS+1] {
			if j == i || len(followRecs) >= (i+1)*FOLLOWS {
				continue
			}
			st := time.Now()
			must(0, relSvc.Follow(ctx, users[i].ID, users[j].ID))
			followRecs = append(followRecs, time.Since(st))
		}
	}
	followDur := time.Since(followStart)

	posts := make([]model.Post, 0, N*POSTS)
	for i := range users {
		for k := 0; k < POSTS; k++ {
			posts = append(posts, model.Post{
				Body:      fmt.Sprintf("post %d by %s", k, users[i].Username),
				Timestamp: now.Add(-time.Duration(rng.Intn(30*24*3600)) * time.Second),
				UserID:    users[i].ID,
			})
		}
	}
	must(0, db.Omit("Author").CreateInBatches(&posts, 1000).Error)
	seedDur := time.Since(seedStart)

	// feed 查询延迟：CONC 个并发 worker
	jobs := make(chan int, REPEAT)
	for r := 0; r < REPEAT; r++ {
		jobs <- rng.Intn(N)
	}
	close(jobs)
	var (
		mu        sync.Mutex
		firstRecs = make([]time.Duration, 0, REPEAT)
		deepRecs  = make([]time.Duration, 0, REPEAT)
		wg        sync.WaitGroup
	)
	for w := 0; w < CONC; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				st := time.Now()
				_, _ = feedSvc.FollowingPosts(ctx, users[i].ID, 1, PAGE)
				d1 := time.Since(st)
				st = time.Now()
				_, _ = feedSvc.FollowingPosts(ctx, users[i].ID, 10, PAGE)
				d2 := time.Since(st)
				mu.Lock()
				firstRecs = append(firstRecs, d1)
				deepRecs = append(deepRecs, d2)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// last_seen 异步写入落库延迟
	recorder := service.NewLastSeenRecorder(userRepo, N, 0)
	stop := recorder.Start(cfg.LastSeen.Workers)
	landRecs := make([]time.Duration, 0, N)
	doneLand := make(chan struct{})
	go func() {
		defer close(doneLand)
		for len(landRecs) < N {
			select {
			case d := <-recorder.Metrics():
				landRecs = append(landRecs, d)
			case <-time.After(5 * time.Second):
				return
			}
		}
	}()
	maxQ := 0
	touchStart := time.Now()
	for i := range users {
		recorder.Touch(users[i].ID)
		if q := recorder.QueueLen(); q > maxQ {
			maxQ = q
		}
	}
	_ = stop(context.Background())
	drainDur := time.Since(touchStart)
	<-doneLand

	// 粉丝数缓存：预热后清零统计，再测量
	var countRecs []time.Duration
	var countStats cache.Stats
	if cfg.Redis.Enabled {
		client := must(cache.NewClient(ctx, cfg.Redis))
		defer client.Close()
		counts := cache.NewCountCache(client, cfg.Redis.CountTTL)
		cachedRel := service.NewRelationshipService(followRepo, userRepo, counts, pager)
		for r := 0; r < REPEAT; r++ {
			_, _ = cachedRel.FollowerCount(ctx, users[rng.Intn(N)].ID)
		}
		counts.ResetStats()
		countRecs = make([]time.Duration, 0, REPEAT)
		for r := 0; r < REPEAT; r++ {
			st := time.Now()
			_, _ = cachedRel.FollowerCount(ctx, users[rng.Intn(N)].ID)
			countRecs = append(countRecs, time.Since(st))
		}
		countStats = counts.Stats()
	}

	fmt.Printf("N=%d FOLLOWS=%d POSTS=%d REPEAT=%d PAGE=%d CONC=%d driver=%s\n",
		N, FOLLOWS, POSTS, REPEAT, PAGE, CONC, cfg.Database.Driver)
	fmt.Printf("Seed total: %v (follows %d in %v, p50=%v p99=%v)\n",
		seedDur, len(followRecs), followDur, pct(followRecs, 0.50), pct(followRecs, 0.99))
	fmt.Printf("Feed page 1: p50=%v p95=%v p99=%v\n", pct(firstRecs, 0.50), pct(firstRecs, 0.95), pct(firstRecs, 0.99))
	fmt.Printf("Feed page 10: p50=%v p95=%v p99=%v\n", pct(deepRecs, 0.50), pct(deepRecs, 0.95), pct(deepRecs, 0.99))
	fmt.Printf("Last-seen landing: samples=%d p50=%v p95=%v p99=%v maxQueue=%d drain=%v\n",
		len(landRecs), pct(landRecs, 0.50), pct(landRecs, 0.95), pct(landRecs, 0.99), maxQ, drainDur)
	if countRecs != nil {
		fmt.Printf("Follower count (redis): hits=%d misses=%d stale=%d p50=%v p95=%v p99=%v\n",
			countStats.Hits, countStats.Misses, countStats.StaleFills, pct(countRecs, 0.50), pct(countRecs, 0.95), pct(countRecs, 0.99))
	}
}
