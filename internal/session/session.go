// Package session owns the customer's login state and its persistence.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/storage"
	"github.com/example/foodapp/internal/utils"
)

// Backend is the part of the API the session talks to.
type Backend interface {
	Login(ctx context.Context, mobile string) (*dto.LoginResponse, error)
	Verify(ctx context.Context, mobile, otp string) (*dto.VerifyResponse, error)
}

// State is a point-in-time copy of the session.
type State struct {
	MobileNumber    string
	OTP             string
	Token           string
	User            *dto.User
	IsAuthenticated bool
	IsOTPSent       bool
}

// Store holds the session. It is safe for concurrent use; network calls
// run without the lock held.
type Store struct {
	backend Backend
	storage storage.Store
	log     *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	state    State
	onLogout func()
}

// New constructs an empty, unauthenticated Store.
func New(backend Backend, store storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		storage: store,
		log:     log.Named("session"),
		now:     time.Now,
	}
}

// OnLogout registers the hook that returns the user to the login entry
// point after Logout.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	s.onLogout = fn
	s.mu.Unlock()
}

func (s *Store) SetMobileNumber(n string) {
	s.mu.Lock()
	s.state.MobileNumber = n
	s.mu.Unlock()
}

func (s *Store) SetOTP(code string) {
	s.mu.Lock()
	s.state.OTP = code
	s.mu.Unlock()
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := st.User.Clone()
		st.User = &u
	}
	return st
}

// SendOTP requests an OTP for the current mobile number.
func (s *Store) SendOTP(ctx context.Context) (*dto.LoginResponse, error) {
	s.mu.RLock()
	mobile := s.state.MobileNumber
	s.mu.RUnlock()

	resp, err := s.backend.Login(ctx, mobile)
	if err != nil {
		s.log.Warn("send otp failed", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.state.IsOTPSent = true
	s.mu.Unlock()
	return resp, nil
}

// VerifyOTP exchanges the current mobile number and OTP for a token. Token
// and user are persisted before the in-memory session changes; if the
// second write fails the first is undone.
func (s *Store) VerifyOTP(ctx context.Context) (*dto.User, error) {
	s.mu.RLock()
	mobile, otp := s.state.MobileNumber, s.state.OTP
	s.mu.RUnlock()

	resp, err := s.backend.Verify(ctx, mobile, otp)
	if err != nil {
		s.log.Warn("verify otp failed", zap.Error(err))
		return nil, err
	}
	if resp.Token == "" {
		return nil, &api.Error{Kind: api.KindServer, Message: api.MsgVerifyOTPFailed, Err: errors.New("no token received")}
	}

	user := resp.User
	if user.MobileNumber == "" {
		user.MobileNumber = mobile
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user data: %w", err)
	}

	if err := s.storage.Set(ctx, storage.KeyAuthToken, resp.Token); err != nil {
		return nil, fmt.Errorf("save auth token: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyUserData, string(userJSON)); err != nil {
		if rbErr := s.storage.Delete(ctx, storage.KeyAuthToken); rbErr != nil {
			s.log.Error("rollback auth token failed", zap.Error(rbErr))
		}
		return nil, fmt.Errorf("save user data: %w", err)
	}

	s.mu.Lock()
	s.state.Token = resp.Token
	s.state.User = &user
	s.state.MobileNumber = user.MobileNumber
	s.state.IsAuthenticated = true
	s.mu.Unlock()

	s.log.Info("customer logged in", zap.String("customer_id", user.CustomerID.String()))
	out := user
	return &out, nil
}

// VerifyToken restores a persisted session. Missing keys yield false and
// leave storage alone; anything unreadable, or a JWT past its exp, clears
// the session and yields false.
func (s *Store) VerifyToken(ctx context.Context) bool {
	token, err := s.storage.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		s.failRestore(ctx, fmt.Errorf("read auth token: %w", err))
		return false
	}

	raw, err := s.storage.Get(ctx, storage.KeyUserData)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		s.failRestore(ctx, fmt.Errorf("read user data: %w", err))
		return false
	}

	if token == "" || raw == "" {
		return false
	}
	var user dto.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.failRestore(ctx, fmt.Errorf("decode user data: %w", err))
		return false
	}
	if utils.TokenExpired(token, s.now()) {
		s.failRestore(ctx, errors.New("auth token expired"))
		return false
	}

	s.mu.Lock()
	s.state.Token = token
	s.state.User = &user
	s.state.MobileNumber = user.MobileNumber
	s.state.IsAuthenticated = true
	s.mu.Unlock()
	return true
}

func (s *Store) failRestore(ctx context.Context, cause error) {
	s.log.Warn("session restore failed", zap.Error(cause))
	if err := s.clear(ctx); err != nil {
		s.log.Error("clear session failed", zap.Error(err))
	}
}

// Logout forgets the session locally. The backend is not told; its token
// stays valid until it expires.
func (s *Store) Logout(ctx context.Context) error {
	err := s.clear(ctx)

	s.mu.RLock()
	hook := s.onLogout
	s.mu.RUnlock()
	if hook != nil {
		hook()
	}
	return err
}

func (s *Store) clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyAuthToken, storage.KeyUserData); err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}
	return nil
}
