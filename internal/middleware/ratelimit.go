package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// RateLimiterConfig はログイン・登録のレート制限設定。
//
// クライアントIDはCookieを捨てれば作り直せるため、送信元アドレス単位の上限も併用する。
// NAT配下の複数利用者を考慮し、アドレス単位はクライアント単位より緩めに設定する。
type RateLimiterConfig struct {
	// PerMinute はクライアントIDごとの1分あたりの許容回数。バーストサイズも同じ値になる。
	PerMinute int
	// AddrPerMinute は送信元アドレスごとの1分あたりの許容回数。
	AddrPerMinute int
	// IdleTTL を過ぎて再アクセスのないリミッターは破棄される。
	// バケットが満タンに戻るまでの時間（1分）以上にすること。
	IdleTTL time.Duration
	// MaxKeys はクライアント・アドレスそれぞれで保持するリミッター数の上限。
	MaxKeys int
}

// NewAuthRateLimiterConfig は1分あたりの許容回数からレート制限設定を生成する。
func NewAuthRateLimiterConfig(perMinute, addrPerMinute int) RateLimiterConfig {
	return RateLimiterConfig{
		PerMinute:     max(perMinute, 1),
		AddrPerMinute: max(addrPerMinute, 1),
		IdleTTL:       10 * time.Minute,
		MaxKeys:       10000,
	}
}

// buckets はキーごとのトークンバケットを有効期限付きで保持する。
type buckets struct {
	limit rate.Limit
	burst int
	lru   *expirable.LRU[string, *rate.Limiter]
}

func newBuckets(perMinute, size int, ttl time.Duration) *buckets {
	perMinute = max(perMinute, 1)
	return &buckets{
		limit: rate.Limit(float64(perMinute) / 60.0),
		burst: perMinute,
		lru:   expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
	}
}

// get はkeyのリミッターを返す。Addし直して有効期限を延ばす。
func (b *buckets) get(key string) *rate.Limiter {
	lim, ok := b.lru.Get(key)
	if !ok {
		lim = rate.NewLimiter(b.limit, b.burst)
	}
	b.lru.Add(key, lim)
	return lim
}

// RateLimiter はクライアントIDと送信元アドレスの両方でログイン試行を制限する。
// 総当たりによるログイン試行を抑止するため、認証エンドポイントに適用する。
type RateLimiter struct {
	mu      sync.Mutex
	clients *buckets
	addrs   *buckets
}

// NewRateLimiter は新しいRateLimiterを生成する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	ttl := config.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	size := config.MaxKeys
	if size <= 0 {
		size = 10000
	}
	addrPerMinute := config.AddrPerMinute
	if addrPerMinute <= 0 {
		addrPerMinute = config.PerMinute
	}
	return &RateLimiter{
		clients: newBuckets(config.PerMinute, size, ttl),
		addrs:   newBuckets(addrPerMinute, size, ttl),
	}
}

// AuthMiddleware はログイン・登録用のレート制限ミドルウェアを返す。
// クライアントミドルウェアの後に配置すること。
// プロキシ配下ではchiのRealIPでRemoteAddrを書き換えてから適用する。
func (rl *RateLimiter) AuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, ok := ClientIDFromContext(r.Context())
			if !ok {
				WriteInternalServerError(w)
				return
			}
			addr := remoteHost(r)

			if wait := rl.reserve(clientID, addr, time.Now()); wait > 0 {
				slog.Warn("rate limit exceeded",
					slog.String("client_id", clientID),
					slog.String("remote_addr", addr),
					slog.String("path", r.URL.Path),
					slog.Duration("retry_after", wait),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
				WriteErrorResponse(w, http.StatusTooManyRequests, model.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimiterCount は保持しているクライアント単位のリミッター数を返す。
func (rl *RateLimiter) LimiterCount() int {
	return rl.clients.lru.Len()
}

// AddrCount は保持しているアドレス単位のリミッター数を返す。
func (rl *RateLimiter) AddrCount() int {
	return rl.addrs.lru.Len()
}

// reserve はクライアントとアドレスのトークンを1つずつ消費する。
// どちらかが不足している場合は両方を戻し、次に許可されるまでの待ち時間を返す。
func (rl *RateLimiter) reserve(clientID, addr string, now time.Time) time.Duration {
	rl.mu.Lock()
	clientLim := rl.clients.get(clientID)
	addrLim := rl.addrs.get(addr)
	rl.mu.Unlock()

	byClient := clientLim.ReserveN(now, 1)
	byAddr := addrLim.ReserveN(now, 1)
	wait := max(byClient.DelayFrom(now), byAddr.DelayFrom(now))
	if wait > 0 {
		byClient.CancelAt(now)
		byAddr.CancelAt(now)
	}
	return wait
}

// remoteHost はRemoteAddrからポートを除いたホスト部分を返す。
// RealIPで書き換え済みの場合はポートが付かないのでそのまま使う。
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(wait time.Duration) int {
	return max(int(math.Ceil(wait.Seconds())), 1)
}
