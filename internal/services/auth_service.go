package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/localnerve/authorizer-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/config"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// ErrAuthorizerNotInitialized is returned before the first request initialized the client
var ErrAuthorizerNotInitialized = errors.New("authorizer client not initialized")

// Identity is the provider's view of an authenticated principal
type Identity struct {
	UserID      string
	Email       string
	AccessToken string
}

// Authenticator is the identity provider used by the auth routes and guards
type Authenticator interface {
	// Init prepares the client for the public origin of the service; later calls are no-ops
	Init(protocol, host string) error
	SignUp(email, password string, roles []string) (*Identity, error)
	Login(email, password string) (*Identity, error)
	// ValidateSession returns the provider user id behind a session cookie
	ValidateSession(cookie string) (string, error)
}

// Authorizer is the Authenticator backed by an Authorizer server
type Authorizer struct {
	cfg *config.Config

	once    sync.Once
	initErr error
	client  *authorizer.AuthorizerClient
}

// NewAuthorizer returns an Authorizer initialized lazily on first use
func NewAuthorizer(cfg *config.Config) *Authorizer {
	return &Authorizer{cfg: cfg}
}

// Init creates the Authorizer client once, after checking the server answers
func (a *Authorizer) Init(protocol, host string) error {
	a.once.Do(func() {
		if err := utils.PingAuthorizer(context.Background(), a.cfg.AuthzURL); err != nil {
			a.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", protocol, host)
		zap.L().Info("initializing authorizer",
			zap.String("authorizerURL", a.cfg.AuthzURL),
			zap.String("clientID", a.cfg.AuthzClientID),
			zap.String("redirectURL", redirectURL),
		)

		client, err := authorizer.NewAuthorizerClient(a.cfg.AuthzClientID, a.cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			a.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		a.client = client
	})
	return a.initErr
}

func stringPtrs(values []string) []*string {
	ptrs := make([]*string, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	return ptrs
}

// SignUp registers a new principal with the given roles
func (a *Authorizer) SignUp(email, password string, roles []string) (*Identity, error) {
	if a.client == nil {
		return nil, ErrAuthorizerNotInitialized
	}
	res, err := a.client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
		Roles:           stringPtrs(roles),
	})
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	if res == nil || res.User == nil {
		return nil, errors.New("signup returned no user")
	}
	id := &Identity{UserID: res.User.ID, Email: email}
	if res.AccessToken != nil {
		id.AccessToken = *res.AccessToken
	}
	return id, nil
}

// Login authenticates a principal
func (a *Authorizer) Login(email, password string) (*Identity, error) {
	if a.client == nil {
		return nil, ErrAuthorizerNotInitialized
	}
	res, err := a.client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if res == nil || res.User == nil || res.AccessToken == nil {
		return nil, errors.New("login returned no session")
	}
	return &Identity{UserID: res.User.ID, Email: email, AccessToken: *res.AccessToken}, nil
}

// ValidateSession validates a session cookie
func (a *Authorizer) ValidateSession(cookie string) (string, error) {
	if a.client == nil {
		return "", ErrAuthorizerNotInitialized
	}
	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return "", fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return "", errors.New("session is not valid")
	}
	return res.User.ID, nil
}

// Credentials is the body of signup and signin
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SigninResult is returned by a successful signin
type SigninResult struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

// HasUsers reports whether any local user exists
func HasUsers(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SignUp registers a principal with the provider and mirrors it locally.
// The first user becomes admin, later users are consultants.
func SignUp(db *gorm.DB, auth Authenticator, in Credentials) (*models.User, error) {
	if _, err := utils.Validate(in); err != nil {
		return nil, err
	}

	role, err := signupRole(db)
	if err != nil {
		return nil, err
	}
	release := func() {
		if role != models.RoleAdmin {
			return
		}
		if err := models.ReleaseCounter(db, models.AdminSeatCounterName); err != nil {
			zap.L().Error("failed to release the admin seat", zap.Error(err))
		}
	}

	identity, err := auth.SignUp(strings.ToLower(in.Email), in.Password, []string{role})
	if err != nil {
		release()
		return nil, types.BadRequest("AuthError", "%v", err)
	}

	user := &models.User{ID: identity.UserID, Email: strings.ToLower(in.Email), Role: role}
	if err := db.Create(user).Error; err != nil {
		release()
		return nil, err
	}
	return user, nil
}

// signupRole is admin for the one signup that claims the admin seat of an empty user table
func signupRole(db *gorm.DB) (string, error) {
	hasUsers, err := HasUsers(db)
	if err != nil || hasUsers {
		return models.RoleConsultant, err
	}
	won, err := models.ClaimCounter(db, models.AdminSeatCounterName)
	if err != nil {
		return "", err
	}
	if !won {
		return models.RoleConsultant, nil
	}
	return models.RoleAdmin, nil
}

// SignIn authenticates with the provider and returns the token with the local user.
// A provider user without a local mirror is mirrored as a consultant.
func SignIn(db *gorm.DB, auth Authenticator, in Credentials) (*SigninResult, error) {
	if _, err := utils.Validate(in); err != nil {
		return nil, err
	}

	identity, err := auth.Login(strings.ToLower(in.Email), in.Password)
	if err != nil {
		return nil, &types.CustomError{Code: 401, Message: err.Error(), Type: "AuthError"}
	}

	user, err := userForIdentity(db, identity.UserID, identity.Email)
	if err != nil {
		return nil, err
	}
	return &SigninResult{AccessToken: identity.AccessToken, User: user}, nil
}

func userForIdentity(db *gorm.DB, id, email string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = models.User{ID: id, Email: strings.ToLower(email), Role: models.RoleConsultant}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserForSession resolves a session cookie to the local user
func UserForSession(db *gorm.DB, auth Authenticator, cookie string) (*models.User, error) {
	userID, err := auth.ValidateSession(cookie)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	return &user, nil
}
