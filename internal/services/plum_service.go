package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OTPSender delivers a one-time code to a mobile number.
type OTPSender interface {
	SendOTP(ctx context.Context, mobile, code string) error
}

// PlumConfig holds the SMS gateway credentials.
type PlumConfig struct {
	BaseURL  string
	Username string
	Password string
	Enabled  bool
}

// PlumService sends SMS through the Plum API. The bearer token is cached
// and refreshed once when a call comes back 401.
type PlumService struct {
	cfg  PlumConfig
	http *http.Client
	log  *zap.Logger

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewPlumService constructs a PlumService.
func NewPlumService(cfg PlumConfig, log *zap.Logger) *PlumService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PlumService{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log.Named("plum"),
	}
}

type plumAuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

func (s *PlumService) getToken(ctx context.Context, force bool) (string, error) {
	if !s.cfg.Enabled {
		return "", errors.New("plum integration is disabled")
	}

	if !force {
		s.mu.RLock()
		if s.token != "" && time.Now().Before(s.tokenExpiry) {
			t := s.token
			s.mu.RUnlock()
			return t, nil
		}
		s.mu.RUnlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock.
	if !force && s.token != "" && time.Now().Before(s.tokenExpiry) {
		return s.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"username": s.cfg.Username,
		"password": s.cfg.Password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("plum auth request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("plum auth request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("plum auth failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var authResp plumAuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return "", fmt.Errorf("plum auth unmarshal: %w", err)
	}
	if authResp.Token == "" {
		return "", errors.New("plum auth: empty token")
	}

	s.token = authResp.Token
	if authResp.ExpiresIn > 0 {
		s.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - 30*time.Second)
	} else {
		s.tokenExpiry = time.Now().Add(55 * time.Minute)
	}
	return s.token, nil
}

// plumResponse wraps the API response.
type plumResponse struct {
	Status int
	Body   []byte
}

func (s *PlumService) do(ctx context.Context, method, path string, body any) (*plumResponse, error) {
	token, err := s.getToken(ctx, false)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("plum request marshal: %w", err)
		}
	}

	resp, err := s.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	// Retry once on 401.
	if resp.Status == http.StatusUnauthorized {
		if token, err = s.getToken(ctx, true); err != nil {
			return nil, err
		}
		return s.send(ctx, method, path, payload, token)
	}
	return resp, nil
}

func (s *PlumService) send(ctx context.Context, method, path string, payload []byte, token string) (*plumResponse, error) {
	url := s.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("plum request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plum request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return &plumResponse{Status: resp.StatusCode, Body: respBody}, nil
}

// SendSMS sends a text message.
func (s *PlumService) SendSMS(ctx context.Context, phone, message string) error {
	resp, err := s.do(ctx, http.MethodPost, "sms/send", map[string]string{
		"phone":   phone,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("plum send sms: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return fmt.Errorf("plum send sms: status %d, body: %s", resp.Status, string(resp.Body))
	}
	return nil
}

// SendOTP texts the code to an Indian mobile number.
func (s *PlumService) SendOTP(ctx context.Context, mobile, code string) error {
	return s.SendSMS(ctx, "91"+mobile, fmt.Sprintf("Your food app login code is %s", code))
}

// LogSender writes codes to the log instead of sending them. It is used
// when no SMS gateway is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) SendOTP(_ context.Context, mobile, code string) error {
	s.Log.Info("otp issued", zap.String("mobile", mobile), zap.String("code", code))
	return nil
}
