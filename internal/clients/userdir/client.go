// Package userdir клиент внешнего справочника пользователей (auth-service).
// Отвечает на вопросы "существует ли участник" и "кто он" по ID.
package userdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker/v2"

	"github.com/fithub/membership-service/internal/config"
	"github.com/fithub/membership-service/internal/lib/breaker"
	"github.com/fithub/membership-service/internal/models"
)

// ErrNotFound пользователь отсутствует в справочнике.
var ErrNotFound = errors.New("user not found")

// Client HTTP-клиент справочника с автоматическим выключателем. Локально
// кэшируется только факт существования пользователя. Карточка с ролью
// всегда читается из справочника.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	known   *cache.Cache
	log     *slog.Logger
}

// New создаёт клиента по настройкам справочника и выключателя.
func New(cfg config.UserDirectory, cbCfg config.CircuitBreaker, log *slog.Logger) *Client {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.ServiceToken,
		http:    &http.Client{Timeout: cfg.Timeout},
		cb: breaker.New[[]byte]("user-directory", cbCfg, log, func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		}),
		known:   cache.New(ttl, 2*ttl),
		log:     log,
	}
}

// Exists сообщает, зарегистрирован ли пользователь id.
func (c *Client) Exists(ctx context.Context, id int64) (bool, error) {
	const op = "userdir.Exists"
	if _, found := c.known.Get(cacheKey(id)); found {
		return true, nil
	}

	body, err := c.get(ctx, fmt.Sprintf("/auth/user/%d/exists", id))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := strconv.ParseBool(strings.TrimSpace(string(body)))
	if err != nil {
		return false, fmt.Errorf("%s: unexpected body %q: %w", op, body, err)
	}
	if exists {
		c.known.SetDefault(cacheKey(id), struct{}{})
	}
	return exists, nil
}

// GetByID возвращает карточку пользователя id или ErrNotFound.
func (c *Client) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	const op = "userdir.GetByID"
	body, err := c.get(ctx, fmt.Sprintf("/auth/user/%d", id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var member models.Member
	if err := json.Unmarshal(body, &member); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if member.ID == 0 {
		member.ID = id
	}
	c.known.SetDefault(cacheKey(id), struct{}{})
	return &member, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode >= 300:
			return nil, fmt.Errorf("user directory responded %d", resp.StatusCode)
		}
		return body, nil
	})
}

func cacheKey(id int64) string {
	return "member:" + strconv.FormatInt(id, 10)
}
