// Package server собирает зависимости HTTP сервера и управляет его жизненным циклом.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/contactbook/internal/crypto"
	"github.com/iudanet/contactbook/internal/server/avatar"
	"github.com/iudanet/contactbook/internal/server/config"
	"github.com/iudanet/contactbook/internal/server/handlers"
	"github.com/iudanet/contactbook/internal/server/mail"
	"github.com/iudanet/contactbook/internal/server/middleware"
	"github.com/iudanet/contactbook/internal/server/ratelimit"
	"github.com/iudanet/contactbook/internal/server/service"
	"github.com/iudanet/contactbook/internal/server/storage"
	"github.com/iudanet/contactbook/internal/server/storage/postgres"
	"github.com/iudanet/contactbook/internal/server/storage/sqlite"
	"github.com/iudanet/contactbook/internal/server/tokens"
)

const (
	// профиль пользователя: 1 запрос в 20 секунд
	profileRateLimit  = 1
	profileRateWindow = 20 * time.Second

	pruneInterval = time.Minute
)

// Option настраивает Server
type Option func(*Server)

// WithMailSender подменяет отправителя писем (по умолчанию SMTP или лог)
func WithMailSender(sender mail.Sender) Option {
	return func(s *Server) { s.sender = sender }
}

// WithAvatarStore подменяет хранилище аватаров
func WithAvatarStore(store avatar.Store) Option {
	return func(s *Server) { s.avatars = store }
}

// WithVersion задает версию, которую отдает health check
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// Server HTTP сервер адресной книги
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      storage.Storage
	sender     mail.Sender
	avatars    avatar.Store
	uploads    *avatar.LocalStore
	dispatcher *mail.Dispatcher
	counter    ratelimit.Counter
	handler    http.Handler
	closers    []func() error
	version    string
}

// New открывает хранилища и собирает обработчики.
// При ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (_ *Server, err error) {
	s := &Server{cfg: cfg, logger: logger, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}

	defer func() {
		if err != nil {
			s.close()
		}
	}()

	if err := s.openStorage(ctx); err != nil {
		return nil, err
	}
	if err := s.openStores(ctx); err != nil {
		return nil, err
	}
	if err := s.openCounter(); err != nil {
		return nil, err
	}
	if err := s.startMail(); err != nil {
		return nil, err
	}

	tokenService, err := tokens.NewService(tokens.Config{
		Secret:          []byte(cfg.SecretKey),
		AccessTTL:       cfg.AccessTTL,
		RefreshTTL:      cfg.RefreshTTL,
		ConfirmationTTL: cfg.ConfirmationTTL,
		ResetTTL:        cfg.ResetTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	notifier := mail.NewNotifier(s.dispatcher, cfg.BaseURL, cfg.ConfirmationTTL, cfg.ResetTTL)
	authService := service.NewAuthService(s.store, crypto.NewHasher(crypto.DefaultCost), tokenService, notifier, logger)
	contactService := service.NewContactService(s.store, logger)
	userService := service.NewUserService(s.store, s.avatars, logger)

	s.handler = s.routes(authService, contactService, userService)
	return s, nil
}

func (s *Server) openStorage(ctx context.Context) error {
	switch s.cfg.Driver {
	case config.DriverPostgres:
		pg, err := postgres.New(ctx, s.cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("failed to open postgres: %w", err)
		}
		s.store = pg
	default:
		lite, err := sqlite.New(ctx, s.cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("failed to open sqlite: %w", err)
		}
		s.store = lite
	}
	s.closers = append(s.closers, s.store.Close)
	s.logger.Info("storage opened", slog.String("driver", s.cfg.Driver))
	return nil
}

func (s *Server) openStores(ctx context.Context) error {
	uploads, err := avatar.NewLocalStore(s.cfg.UploadDir, strings.TrimRight(s.cfg.BaseURL, "/")+"/uploads")
	if err != nil {
		return err
	}
	s.uploads = uploads

	if s.avatars != nil {
		return nil
	}
	if s.cfg.S3.Bucket == "" {
		s.avatars = uploads
		return nil
	}

	s3Store, err := avatar.NewS3Store(ctx, avatar.S3Config{
		Endpoint:  s.cfg.S3.Endpoint,
		Region:    s.cfg.S3.Region,
		Bucket:    s.cfg.S3.Bucket,
		AccessKey: s.cfg.S3.AccessKey,
		SecretKey: s.cfg.S3.SecretKey,
		PublicURL: s.cfg.S3.PublicURL,
	})
	if err != nil {
		return err
	}
	s.avatars = s3Store
	return nil
}

func (s *Server) openCounter() error {
	if s.cfg.RateLimitStore == config.RateLimitBolt {
		b, err := ratelimit.NewBolt(s.cfg.RateLimitPath)
		if err != nil {
			return err
		}
		s.counter = b
		s.closers = append(s.closers, b.Close)
		return nil
	}

	m := ratelimit.NewMemory(pruneInterval)
	s.counter = m
	s.closers = append(s.closers, func() error {
		m.Stop()
		return nil
	})
	return nil
}

func (s *Server) startMail() error {
	if s.sender == nil {
		if s.cfg.Mail.Host == "" {
			s.logger.Warn("MAIL_HOST is not set, emails will be written to the log")
			s.sender = mail.NewLogSender(s.logger)
		} else {
			smtpSender, err := mail.NewSMTPSender(mail.SMTPConfig{
				Host:     s.cfg.Mail.Host,
				Port:     s.cfg.Mail.Port,
				Username: s.cfg.Mail.Username,
				Password: s.cfg.Mail.Password,
				From:     s.cfg.Mail.From,
				FromName: s.cfg.Mail.FromName,
			})
			if err != nil {
				return err
			}
			s.sender = smtpSender
		}
	}

	s.dispatcher = mail.NewDispatcher(s.sender, s.logger, s.cfg.Mail.Workers, s.cfg.Mail.Queue)
	s.dispatcher.Start()
	s.closers = append(s.closers, func() error {
		s.dispatcher.Stop()
		return nil
	})
	return nil
}

func (s *Server) routes(
	authService *service.AuthService,
	contactService *service.ContactService,
	userService *service.UserService,
) http.Handler {
	logger := s.logger

	healthHandler := handlers.NewHealthHandler(logger, s.store, s.version)
	authHandler := handlers.NewAuthHandler(logger, authService)
	contactHandler := handlers.NewContactHandler(logger, contactService, s.uploads)
	userHandler := handlers.NewUserHandler(logger, userService)

	authed := middleware.AuthMiddleware(logger, authService)
	limited := middleware.RateLimitMiddleware(s.counter, profileRateLimit, profileRateWindow, s.cfg.TrustProxyHeaders, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", healthHandler.Root)
	mux.HandleFunc("GET /api/health", healthHandler.Health)

	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/refresh_token", authHandler.RefreshToken)
	mux.HandleFunc("GET /api/auth/confirmed_email/{token}", authHandler.ConfirmedEmail)
	mux.HandleFunc("POST /api/auth/request_email", authHandler.RequestEmail)
	mux.HandleFunc("POST /api/auth/forgot_password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset_password", authHandler.ResetPassword)

	mux.Handle("GET /api/contacts/{$}", authed(http.HandlerFunc(contactHandler.List)))
	mux.Handle("POST /api/contacts/{$}", authed(http.HandlerFunc(contactHandler.Create)))
	mux.Handle("GET /api/contacts/search/{$}", authed(http.HandlerFunc(contactHandler.Search)))
	mux.Handle("GET /api/contacts/birthdays/{$}", authed(http.HandlerFunc(contactHandler.Birthdays)))
	mux.Handle("POST /api/contacts/upload-file/{$}", authed(http.HandlerFunc(contactHandler.UploadFile)))
	mux.Handle("GET /api/contacts/{id}", authed(http.HandlerFunc(contactHandler.Get)))
	mux.Handle("PUT /api/contacts/{id}", authed(http.HandlerFunc(contactHandler.Update)))
	mux.Handle("DELETE /api/contacts/{id}", authed(http.HandlerFunc(contactHandler.Delete)))

	// лимит проверяется до аутентификации
	mux.Handle("GET /api/users/me", limited(authed(http.HandlerFunc(userHandler.Me))))
	mux.Handle("PATCH /api/users/avatar", limited(authed(http.HandlerFunc(userHandler.Avatar))))

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", noListing(http.FileServer(http.Dir(s.uploads.Dir())))))

	var h http.Handler = mux
	h = middleware.LoggingWithSkip(logger, []string{"/api/health"})(h)
	h = middleware.RecoveryMiddleware(logger)(h)
	return h
}

// noListing запрещает просмотр содержимого каталогов
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler возвращает корневой http.Handler со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер:
// дожидается активных запросов, останавливает отправку писем и закрывает хранилища.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.close()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve как Run, но на готовом listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.close()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	if pruner, ok := s.counter.(*ratelimit.Bolt); ok {
		go s.pruneLoop(ctx, pruner)
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("addr", ln.Addr().String()))
		errC <- srv.Serve(ln)
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// pruneLoop периодически удаляет истекшие окна rate limit из bolt
func (s *Server) pruneLoop(ctx context.Context, b *ratelimit.Bolt) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := b.Prune(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to prune rate limit windows", slog.Any("error", err))
				continue
			}
			if n > 0 {
				s.logger.DebugContext(ctx, "rate limit windows pruned", slog.Int("count", n))
			}
		}
	}
}

// Close освобождает ресурсы сервера, если Run не вызывался
func (s *Server) Close() {
	s.close()
}

// close закрывает ресурсы в обратном порядке открытия
func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}
	s.closers = nil
}
