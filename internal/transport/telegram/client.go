// Package telegram доставляет сообщения через Telegram Bot API и определяет служебные чаты магазина.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osama-agency/telesklad/internal/domain"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	methodSendMessage     = "sendMessage"
	methodEditMessageText = "editMessageText"

	parseModeHTML = "HTML"

	defaultTimeout = 10 * time.Second
)

// Интервал повтора при ответе 429 без подсказки или с некорректной подсказкой.
const (
	minRetryAfter     = time.Second
	maxRetryAfter     = time.Hour
	defaultRetryAfter = 60 * time.Second
)

// errNotModified текст ответа Bot API на редактирование без изменений.
const errNotModified = "message is not modified"

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client реализация мессенджера поверх Bot API. Сообщения отправляются с parse_mode=HTML.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type editMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type message struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// Send отправляет сообщение в чат. Ошибки доставки возвращаются как *domain.DeliveryError.
func (c *Client) Send(ctx context.Context, chatID int64, text string) (*domain.MessageHandle, error) {
	res, err := c.call(ctx, methodSendMessage, sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseModeHTML,
	})
	if err != nil {
		return nil, err
	}

	var msg message
	if jsonErr := json.Unmarshal(res.Result, &msg); jsonErr != nil {
		return nil, domain.NewDeliveryError(0, 0, fmt.Errorf("parse message: %s", jsonErr.Error()))
	}
	if msg.Chat.ID == 0 {
		msg.Chat.ID = chatID
	}
	return &domain.MessageHandle{ChatID: msg.Chat.ID, MessageID: msg.MessageID}, nil
}

// Edit заменяет текст ранее отправленного сообщения. Редактирование без изменений не считается ошибкой.
func (c *Client) Edit(ctx context.Context, handle domain.MessageHandle, text string) error {
	_, err := c.call(ctx, methodEditMessageText, editMessageRequest{
		ChatID:    handle.ChatID,
		MessageID: handle.MessageID,
		Text:      text,
		ParseMode: parseModeHTML,
	})
	var deliveryErr *domain.DeliveryError
	if errors.As(err, &deliveryErr) && deliveryErr.StatusCode == http.StatusBadRequest &&
		deliveryErr.Err != nil && strings.Contains(deliveryErr.Err.Error(), errNotModified) {
		return nil
	}
	return err
}

//nolint:nonamedreturns
func (c *Client) call(ctx context.Context, method string, payload any) (response *apiResponse, err error) {
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal %s request: %s", method, marshalErr.Error())
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %s", reqErr.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		// Текст ошибки транспорта содержит url вместе с токеном.
		return nil, domain.NewDeliveryError(0, 0, fmt.Errorf("do %s request: %w", method, stripURL(doErr)))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, domain.NewDeliveryError(resp.StatusCode, 0, fmt.Errorf("read response: %s", readErr.Error()))
	}

	response = new(apiResponse)
	if jsonErr := json.Unmarshal(raw, response); jsonErr != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, statusError(resp, nil)
		}
		return nil, domain.NewDeliveryError(resp.StatusCode, 0, fmt.Errorf("parse response: %s", jsonErr.Error()))
	}

	if resp.StatusCode != http.StatusOK || !response.OK {
		return nil, statusError(resp, response)
	}
	return response, nil
}

// statusError собирает ошибку доставки из неуспешного ответа. Для 429 интервал повтора берется из
// parameters.retry_after, затем из заголовка Retry-After.
func statusError(resp *http.Response, body *apiResponse) *domain.DeliveryError {
	code := resp.StatusCode
	var cause error
	if body != nil {
		if body.ErrorCode != 0 {
			code = body.ErrorCode
		}
		if body.Description != "" {
			cause = errors.New(body.Description)
		}
	}

	var retryAfter time.Duration
	if code == http.StatusTooManyRequests {
		retryAfter = defaultRetryAfter
		if body != nil && body.Parameters != nil && body.Parameters.RetryAfter > 0 {
			retryAfter = time.Duration(body.Parameters.RetryAfter) * time.Second
		} else if header, parseErr := time.ParseDuration(resp.Header.Get("Retry-After") + "s"); parseErr == nil {
			retryAfter = header
		}
		if retryAfter < minRetryAfter || retryAfter > maxRetryAfter {
			retryAfter = defaultRetryAfter
		}
	}
	return domain.NewDeliveryError(code, retryAfter, cause)
}

func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
