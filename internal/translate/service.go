package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/ceramicarte/preventivi-backend/pkg/enums"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
	"github.com/ceramicarte/preventivi-backend/pkg/metrics"
)

// Gateway translates a single text between two site languages.
type Gateway interface {
	Translate(ctx context.Context, text string, source, target enums.Language) (string, error)
}

// Backend is one upstream translation provider. Source and target are
// provider language codes, already mapped from the site codes.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// providerCode maps a site language to the code the providers expect.
// The site uses cn and rs; the providers speak zh and ru.
func providerCode(l enums.Language) string {
	switch l {
	case enums.LanguageChinese:
		return "zh"
	case enums.LanguageSerbian:
		return "ru"
	default:
		return l.String()
	}
}

type Options struct {
	Backends        []Backend
	Cache           *Cache
	Metrics         *metrics.Registry
	Log             *logger.Logger
	AttemptTimeout  time.Duration
	RetryPerBackend uint64
}

type Service struct {
	backends       []Backend
	cache          *Cache
	metrics        *metrics.Registry
	log            *logger.Logger
	attemptTimeout time.Duration
	retries        uint64
}

func NewService(opts Options) *Service {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 8 * time.Second
	}
	return &Service{
		backends:       opts.Backends,
		cache:          opts.Cache,
		metrics:        opts.Metrics,
		log:            opts.Log,
		attemptTimeout: opts.AttemptTimeout,
		retries:        opts.RetryPerBackend,
	}
}

// Translate tries each backend in order and returns the first result,
// normalized. An error means every backend failed; callers keep the
// source text in that case.
func (s *Service) Translate(ctx context.Context, text string, source, target enums.Language) (string, error) {
	if text == "" || source == target {
		return Normalize(text), nil
	}

	normalized := Normalize(text)
	if normalized == "" {
		return text, nil
	}

	src := providerCode(source)
	tgt := providerCode(target)

	if cached, ok := s.cache.Get(ctx, normalized, src, tgt); ok {
		return cached, nil
	}

	var errs error
	for _, backend := range s.backends {
		translated, err := s.tryBackend(ctx, backend, normalized, src, tgt)
		if err == nil {
			result := Normalize(translated)
			s.cache.Put(ctx, normalized, src, tgt, result)
			return result, nil
		}
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}

	if s.log != nil {
		s.log.Warn(s.log.WithFields(ctx, map[string]any{
			"source": source.String(),
			"target": target.String(),
		}), "all translation backends failed")
	}
	return "", fmt.Errorf("translating %s to %s: %w", source, target, errs)
}

func (s *Service) tryBackend(ctx context.Context, backend Backend, text, src, tgt string) (string, error) {
	var result string

	backoff := retry.WithMaxRetries(s.retries, retry.NewConstant(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		defer cancel()

		translated, err := backend.Translate(attemptCtx, text, src, tgt)
		if err != nil {
			if s.metrics != nil {
				s.metrics.TranslationRequests.WithLabelValues(backend.Name(), "error").Inc()
			}
			return retry.RetryableError(err)
		}

		if s.metrics != nil {
			s.metrics.TranslationRequests.WithLabelValues(backend.Name(), "ok").Inc()
		}
		result = translated
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}
