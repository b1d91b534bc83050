package app

import (
	"context"
	"log"
	"time"

	"taskboard/api/internal/auth"
	"taskboard/api/internal/authpw"
	"taskboard/api/internal/config"
	"taskboard/api/internal/email"
	"taskboard/api/internal/export"
	"taskboard/api/internal/media"
	"taskboard/api/internal/search"
	"taskboard/api/internal/session"
	"taskboard/api/internal/store"
	"taskboard/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	JTI          string
	ExpiresAt    time.Time
}

// dataStore is the persistence surface the service needs. *store.PostgresStore
// satisfies it; tests use an in-memory fake.
type dataStore interface {
	GetUserByID(context.Context, string) (store.User, error)
	SearchUsers(context.Context, string) ([]store.User, error)

	InsertBoard(context.Context, store.Board) error
	GetBoard(context.Context, string) (store.Board, error)
	ListBoardsByOwner(context.Context, string) ([]store.Board, error)
	UpdateBoard(context.Context, store.Board) error
	DeleteBoard(context.Context, string) error

	InsertList(context.Context, store.TaskList) error
	GetList(context.Context, string) (store.TaskList, error)
	ListListsByBoard(context.Context, string) ([]store.TaskList, error)
	UpdateList(context.Context, store.TaskList) error
	DeleteList(context.Context, string) error
	DeleteListsByBoard(context.Context, string) error

	InsertCard(context.Context, store.Card) error
	GetCard(context.Context, string) (store.Card, error)
	ListCardsByBoard(context.Context, string) ([]store.Card, error)
	ListCardsByList(context.Context, string) ([]store.Card, error)
	ListCardsByMember(context.Context, string) ([]store.Card, error)
	UpdateCard(context.Context, store.Card) error
	DeleteCard(context.Context, string) error
	DeleteCardsByBoard(context.Context, string) error
	DeleteCardsByList(context.Context, string) error

	InsertMessage(context.Context, store.Message) error
	GetMessage(context.Context, string) (store.Message, error)
	ListConversation(context.Context, string, string) ([]store.Message, error)
	ListMessagesByUser(context.Context, string) ([]store.Message, error)
	MarkMessageRead(context.Context, string) error
	CountUnreadMessages(context.Context, string) (int, error)
	DeleteMessage(context.Context, string) error

	InsertFriendship(context.Context, store.Friendship) error
	GetFriendship(context.Context, string) (store.Friendship, error)
	GetFriendshipBetween(context.Context, string, string) (store.Friendship, error)
	UpdateFriendshipStatus(context.Context, string, string) error
	DeleteFriendship(context.Context, string) error
	ListFriendshipsByUser(context.Context, string, string) ([]store.Friendship, error)
	ListFriendshipsByFriend(context.Context, string, string) ([]store.Friendship, error)

	InsertIdea(context.Context, store.Idea) error
	GetIdea(context.Context, string) (store.Idea, error)
	ListIdeas(context.Context) ([]store.Idea, error)
	ListIdeasByUser(context.Context, string) ([]store.Idea, error)
	ListApprovedIdeas(context.Context) ([]store.Idea, error)
	UpdateIdea(context.Context, store.Idea) error
	DeleteIdea(context.Context, string) error

	Ping(ctx context.Context) error
}

// sessionStore holds refresh tokens. *session.RedisStore satisfies it.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (string, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	search   *search.Service
	authpw   *authpw.Service
	mailer   *email.Service
	media    *media.Store
	exporter *export.Service
}

func New(
	cfg config.Config,
	dataStore *store.PostgresStore,
	sessions *session.RedisStore,
	searchSvc *search.Service,
	authSvc *authpw.Service,
	mailer *email.Service,
	mediaStore *media.Store,
	exporter *export.Service,
) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		search:   searchSvc,
		authpw:   authSvc,
		mailer:   mailer,
		media:    mediaStore,
		exporter: exporter,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Search runs a full-text query scoped to the actor. Returns an empty
// response when search is not wired.
func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

// AuthPasswordService exposes the email/password auth flow to the HTTP layer.
func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

// MediaStore exposes object storage; nil when uploads are not configured.
func (s *Service) MediaStore() *media.Store {
	return s.media
}

func (s *Service) SMTPConfigured() bool {
	return s.mailer != nil && s.mailer.IsConfigured()
}

// SendVerificationEmail mails the verification link; a no-op when SMTP is not
// configured (the signup handler falls back to a dev token in the response).
func (s *Service) SendVerificationEmail(to, userName, token string) {
	if !s.SMTPConfigured() {
		return
	}
	url := s.cfg.BaseURL + "/verify-email?token=" + token
	go func() {
		if err := s.mailer.SendVerificationEmail(to, userName, url); err != nil {
			log.Printf("email: send verification to %s: %v", to, err)
		}
	}()
}

// SendPasswordResetEmail mails the reset link; same dev fallback as above.
func (s *Service) SendPasswordResetEmail(to, userName, token string) {
	if !s.SMTPConfigured() {
		return
	}
	url := s.cfg.BaseURL + "/reset-password?token=" + token
	go func() {
		if err := s.mailer.SendPasswordResetEmail(to, userName, url); err != nil {
			log.Printf("email: send password reset to %s: %v", to, err)
		}
	}()
}

// CreateSession issues access and refresh tokens for an authenticated user.
func (s *Service) CreateSession(ctx context.Context, userID string) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a fresh
// pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	userID, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.DisplayName,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

// SessionFromToken parses and re-validates a bearer token. The user row is
// re-read on every call so deactivated accounts lose access immediately.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, auth.ErrInvalidToken
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}
