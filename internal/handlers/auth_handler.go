package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/middleware"
	"flowtrack/internal/models"
	"flowtrack/internal/oauth"
	"flowtrack/internal/services"
)

// AuthHandler handles authentication and profile requests.
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
	google       oauth.GoogleVerifier
}

// NewAuthHandler creates a new AuthHandler. A nil verifier disables
// Google sign-in.
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer, google oauth.GoogleVerifier) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService, google: google}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string           `json:"username" binding:"required,max=100"`
	Email    string           `json:"email" binding:"required,email,max=255"`
	Title    string           `json:"title" binding:"max=100"`
	Password string           `json:"password" binding:"required,min=8,max=128"`
	Budget   *decimal.Decimal `json:"budget"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries a Google ID token obtained by the client.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// UpdateProfileRequest represents the profile update payload. Omitted
// fields are left unchanged.
type UpdateProfileRequest struct {
	Username       *string `json:"username" binding:"omitempty,max=100"`
	Title          *string `json:"title" binding:"omitempty,max=100"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,max=2048"`
	Password       *string `json:"password" binding:"omitempty,min=8,max=128"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with an initial budget
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} Envelope{data=AuthResponse} "User registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget := decimal.Zero
	if req.Budget != nil {
		budget = *req.Budget
	}

	user, err := h.userService.CreateUser(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Title:    req.Title,
		Password: req.Password,
		Budget:   budget,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, "User registered", user)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} Envelope{data=AuthResponse} "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, "Login successful", user)
}

// GoogleLogin signs in with a Google ID token, creating the account on
// first use.
// @Summary     Login with Google
// @Description Verify a Google ID token and return an API token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body GoogleLoginRequest true "Google ID token"
// @Success     200 {object} Envelope{data=AuthResponse} "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Token could not be verified"
// @Failure     503 {object} ErrorResponse "Google sign-in not configured"
// @Router      /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		respondWithError(c, apperrors.ErrGoogleLoginDisabled)
		return
	}

	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	identity, err := h.google.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidIdentityToken, err))
		return
	}

	user, err := h.userService.FindOrCreateGoogleUser(identity.Subject, identity.Email, identity.Name, identity.Picture)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, message string, user *models.User) {
	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	respondOK(c, status, message, AuthResponse{Token: token, User: user})
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile, including the current budget
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Envelope{data=models.User} "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile changes the editable profile fields
// @Summary     Update user profile
// @Description Update username, title, profile picture or password
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile changes"
// @Success     200 {object} Envelope{data=models.User} "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(userID, services.ProfileUpdate{
		Username:       req.Username,
		Title:          req.Title,
		ProfilePicture: req.ProfilePicture,
		Password:       req.Password,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changed := map[string]interface{}{}
	if req.Username != nil {
		changed["username"] = *req.Username
	}
	if req.Title != nil {
		changed["title"] = *req.Title
	}
	if req.ProfilePicture != nil {
		changed["profile_picture"] = *req.ProfilePicture
	}
	if req.Password != nil {
		changed["password"] = "changed"
	}
	h.auditService.Log(userID, services.AuditActionUpdateProfile, "user", userID, c.ClientIP(), changed)

	respondOK(c, http.StatusOK, "Profile updated", user)
}
