package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	policy "github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/redactor-policy"
)

// DefaultTimeout - предельное время одного форматирования.
const DefaultTimeout = 2 * time.Second

// Result - результат форматирования ревизии.
type Result struct {
	Revision uint64 `json:"revision"`
	HTML     string `json:"html"`
	Format   string `json:"format"`
	Fallback bool   `json:"fallback"`
	Err      string `json:"error,omitempty"`
}

// Observer получает длительность и ошибку каждого завершенного форматирования.
type Observer func(format string, d time.Duration, err error)

// Option настраивает Boundary.
type Option func(*Boundary)

// WithSanitize включает очистку HTML политикой перед форматированием.
func WithSanitize(enabled bool) Option {
	return func(b *Boundary) { b.sanitize = enabled }
}

// WithTimeout задает предельное время форматирования.
func WithTimeout(d time.Duration) Option {
	return func(b *Boundary) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithObserver задает наблюдателя форматирования.
func WithObserver(o Observer) Option {
	return func(b *Boundary) { b.observer = o }
}

// Boundary форматирует HTML асинхронно. Каждая отправка получает новую ревизию и отменяет предыдущую задачу,
// результат устаревшей ревизии отбрасывается. При ошибке отдается последний удачный результат для того же
// входа или исходный HTML.
type Boundary struct {
	formatter Formatter
	sanitize  bool
	timeout   time.Duration
	observer  Observer

	mu       sync.Mutex
	revision uint64
	cancel   context.CancelFunc
	latest   *Result
	lastGood map[string]string
	changed  chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

func NewBoundary(f Formatter, opts ...Option) *Boundary {
	if f == nil {
		f = Raw{}
	}
	b := &Boundary{
		formatter: f,
		timeout:   DefaultTimeout,
		lastGood:  make(map[string]string),
		changed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Format возвращает имя форматтера.
func (b *Boundary) Format() string {
	return b.formatter.Name()
}

// Submit отправляет HTML на форматирование и возвращает номер ревизии.
// После Close отправка игнорируется и возвращает текущую ревизию.
func (b *Boundary) Submit(src string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return b.revision
	}
	if b.cancel != nil {
		b.cancel()
	}

	b.revision++
	rev := b.revision
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	b.cancel = cancel

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		b.run(ctx, rev, src)
	}()

	return rev
}

func (b *Boundary) run(ctx context.Context, rev uint64, src string) {
	input := src
	if b.sanitize {
		input = policy.Sanitize(src)
	}

	start := time.Now()
	out, err := b.formatter.Format(ctx, input)
	if b.observer != nil {
		b.observer(b.formatter.Name(), time.Since(start), err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if rev != b.revision {
		slog.Debug("Discard stale preview", "revision", rev, "current", b.revision)
		return
	}

	res := Result{Revision: rev, HTML: out, Format: b.formatter.Name()}
	if err != nil {
		slog.Warn("Format preview", "format", b.formatter.Name(), "revision", rev, "err", err)
		res.Fallback = true
		res.Err = err.Error()
		if good, ok := b.lastGood[input]; ok {
			res.HTML = good
		} else {
			res.HTML = input
		}
	} else {
		clear(b.lastGood)
		b.lastGood[input] = out
	}

	b.latest = &res
	close(b.changed)
	b.changed = make(chan struct{})
}

// Latest возвращает последний опубликованный результат.
func (b *Boundary) Latest() (Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		return Result{}, false
	}
	return *b.latest, true
}

// Wait ждет публикации результата ревизии rev или более новой.
func (b *Boundary) Wait(ctx context.Context, rev uint64) (Result, error) {
	for {
		b.mu.Lock()
		if b.latest != nil && b.latest.Revision >= rev {
			res := *b.latest
			b.mu.Unlock()
			return res, nil
		}
		changed := b.changed
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-changed:
		}
	}
}

// Close отменяет текущую задачу и ждет завершения горутин.
func (b *Boundary) Close() {
	b.mu.Lock()
	b.closed = true
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()
	b.wg.Wait()
}
